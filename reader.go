package grepdex

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Reader decodes an archive chunk by chunk. Each chunk is decompressed
// as one atomic unit; the format offers no random access within a
// chunk.
type Reader struct {
	r io.Reader
}

// NewReader validates the container header and returns a reader
// positioned at the first chunk record. Returns ErrBadMagic if r does
// not hold a grepdex archive.
func NewReader(r io.Reader) (*Reader, error) {
	var magic [magicSize]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read container header: %w", err)
	}
	if magic != fileMagic {
		return nil, ErrBadMagic
	}
	return &Reader{r: r}, nil
}

// Next reads, decompresses, and decodes the next chunk record. It
// returns the chunk's header and its file records in the order they
// were appended. At the end of the archive it returns io.EOF.
func (r *Reader) Next() (ChunkHeader, []FileRecord, error) {
	var buf [chunkHeaderSize]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		if err == io.EOF {
			return ChunkHeader{}, nil, io.EOF
		}
		return ChunkHeader{}, nil, fmt.Errorf("%w: truncated chunk header: %v", ErrCorrupt, err)
	}

	header, err := decodeChunkHeader(buf[:])
	if err != nil {
		return ChunkHeader{}, nil, err
	}
	if header.CompressedSize > math.MaxInt || header.UncompressedSize > math.MaxInt {
		return ChunkHeader{}, nil, fmt.Errorf("%w: chunk sizes overflow (%d/%d)",
			ErrCorrupt, header.CompressedSize, header.UncompressedSize)
	}

	compressed := make([]byte, header.CompressedSize)
	if _, err := io.ReadFull(r.r, compressed); err != nil {
		return ChunkHeader{}, nil, fmt.Errorf("%w: truncated chunk data: %v", ErrCorrupt, err)
	}

	body, err := decompressChunk(compressed, int(header.UncompressedSize))
	if err != nil {
		return ChunkHeader{}, nil, err
	}

	files, err := decodeChunkBody(body, int(header.FileCount))
	if err != nil {
		return ChunkHeader{}, nil, err
	}
	return header, files, nil
}

// ReadArchive decodes every chunk of the archive at path and returns the
// concatenated file records in archive order.
func ReadArchive(path string) ([]FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, err
	}

	var files []FileRecord
	for {
		_, chunkFiles, err := r.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		files = append(files, chunkFiles...)
	}
}
