package grepdex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FileError reports a recoverable per-file failure: the file could not
// be opened, read, or stat'd. The caller should skip the file and
// continue the build. Any other error from the Builder is fatal.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Builder streams files into a chunked, compressed archive.
//
// A Builder is either open or closed. While open it accumulates files
// into the current chunk; once the chunk's content size exceeds the
// configured threshold, the next append flushes it as one compressed
// record. Close flushes the trailing chunk, so a partially filled chunk
// is never dropped. A closed Builder rejects all further operations with
// ErrClosed.
//
// All archive bytes go through the single output writer in chunk
// formation order, including when parallel compression is enabled.
// A Builder must not be used from multiple goroutines.
type Builder struct {
	cfg buildConfig
	out io.Writer
	cur chunk

	mu       sync.Mutex
	stats    Stats
	writeErr error

	closed bool

	// Parallel compression pipeline (nil when workers <= 1). Jobs enter
	// the channel in chunk formation order; the writer goroutine waits
	// for each job's compression to finish before writing it, which
	// keeps the archive ordering identical to the serial path.
	jobs       chan *chunkJob
	group      *errgroup.Group
	writerDone chan struct{}
}

// chunkJob carries one encoded chunk body through the compression
// pipeline. done is closed once out is populated.
type chunkJob struct {
	fileCount int
	body      []byte
	out       []byte
	done      chan struct{}
}

// NewBuilder opens a builder writing to out and immediately writes the
// container header. The caller owns out and closes it after Close.
func NewBuilder(out io.Writer, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg: resolveConfig(opts),
		out: out,
	}

	if _, err := out.Write(fileMagic[:]); err != nil {
		return nil, fmt.Errorf("write container header: %w", err)
	}

	if b.cfg.workers > 1 {
		b.jobs = make(chan *chunkJob, b.cfg.workers)
		b.group = &errgroup.Group{}
		b.group.SetLimit(b.cfg.workers)
		b.writerDone = make(chan struct{})
		go b.runWriter()
	}

	return b, nil
}

// AppendFile reads path fully into memory and appends it to the current
// chunk, flushing first if the chunk already exceeds the threshold.
//
// A failure to open, stat, or read the file is returned as a *FileError;
// the builder state is unchanged by it (apart from any flush that
// already happened) and the caller may continue appending. Any other
// error is fatal to the build.
func (b *Builder) AppendFile(path string) error {
	if b.closed {
		return ErrClosed
	}
	if err := b.err(); err != nil {
		return err
	}

	// Check-before-append: the threshold is tested before the new file
	// is read, so a chunk can overshoot it by at most one file.
	if b.cur.totalSize > b.cfg.chunkSize {
		if err := b.flushChunk(); err != nil {
			return err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}

	b.cur.append(FileRecord{
		Name:      path,
		Contents:  contents,
		FileSize:  uint64(info.Size()),
		TimeStamp: uint64(info.ModTime().Unix()),
	})
	return nil
}

// Append adds an in-memory record to the current chunk, applying the
// same threshold policy as AppendFile. It exists for callers that
// already hold file contents.
func (b *Builder) Append(rec FileRecord) error {
	if b.closed {
		return ErrClosed
	}
	if err := b.err(); err != nil {
		return err
	}

	if b.cur.totalSize > b.cfg.chunkSize {
		if err := b.flushChunk(); err != nil {
			return err
		}
	}

	b.cur.append(rec)
	return nil
}

// Flush writes out the current chunk even if it is below the threshold.
// An empty chunk is a no-op.
func (b *Builder) Flush() error {
	if b.closed {
		return ErrClosed
	}
	if err := b.err(); err != nil {
		return err
	}
	return b.flushChunk()
}

// Close flushes the trailing chunk and finalizes the archive stream. It
// does not close the underlying writer. After Close the builder rejects
// all operations.
func (b *Builder) Close() error {
	if b.closed {
		return ErrClosed
	}

	flushErr := b.flushChunk()
	b.closed = true

	if b.jobs != nil {
		close(b.jobs)
		<-b.writerDone
		// Compression goroutines never return errors; contract breaches
		// panic inside compressChunk.
		_ = b.group.Wait()
	}

	if flushErr != nil {
		return flushErr
	}
	return b.err()
}

// Stats returns a copy of the running counters. Safe to call while a
// parallel build is in flight.
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// flushChunk encodes and writes the current chunk, then resets it. With
// parallel compression enabled the chunk is handed to the pipeline and
// write errors surface on a later call or at Close.
func (b *Builder) flushChunk() error {
	if len(b.cur.files) == 0 {
		return nil
	}

	fileCount := len(b.cur.files)
	body := encodeChunkBody(b.cur.files)
	b.cur.reset()

	if b.jobs == nil {
		out, _ := compressChunk(body)
		return b.writeChunk(fileCount, len(body), out)
	}

	job := &chunkJob{fileCount: fileCount, body: body, done: make(chan struct{})}
	b.jobs <- job
	b.group.Go(func() error {
		job.out, _ = compressChunk(job.body)
		close(job.done)
		return nil
	})
	return nil
}

// runWriter drains the job queue in order, writing each chunk record as
// its compression completes. On a write error it keeps draining so the
// compression goroutines are never blocked, but writes nothing further.
func (b *Builder) runWriter() {
	defer close(b.writerDone)
	for job := range b.jobs {
		<-job.done
		if b.err() != nil {
			continue
		}
		if err := b.writeChunk(job.fileCount, len(job.body), job.out); err != nil {
			b.setErr(err)
		}
	}
}

// writeChunk emits one chunk record and updates statistics exactly once.
func (b *Builder) writeChunk(fileCount, uncompressedSize int, out []byte) error {
	header := encodeChunkHeader(ChunkHeader{
		FileCount:        uint32(fileCount),
		UncompressedSize: uint64(uncompressedSize),
		CompressedSize:   uint64(len(out)),
	})

	if _, err := b.out.Write(header[:]); err != nil {
		return fmt.Errorf("write chunk header: %w", err)
	}
	if _, err := b.out.Write(out); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}

	b.mu.Lock()
	b.stats.FileCount += fileCount
	b.stats.InputBytes += uint64(uncompressedSize)
	b.stats.OutputBytes += uint64(len(out))
	stats := b.stats
	b.mu.Unlock()

	if b.cfg.progress != nil {
		b.cfg.progress(ProgressEvent{
			Stage:       StageArchiving,
			FilesDone:   stats.FileCount,
			InputBytes:  stats.InputBytes,
			OutputBytes: stats.OutputBytes,
		})
	}
	return nil
}

func (b *Builder) err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeErr
}

func (b *Builder) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr == nil {
		b.writeErr = err
	}
}

// IsFileError reports whether err is a recoverable per-file failure.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}
