package grepdex

// DefaultChunkSize is the chunk accumulation threshold used when no
// WithChunkSize option is set. A chunk is flushed once its accumulated
// content size exceeds this value, so a single chunk may overshoot it by
// at most one file's size.
const DefaultChunkSize = 512 << 10

// FileRecord is one input file captured in memory before it is encoded
// into a chunk.
type FileRecord struct {
	// Name is the path the file was appended under. It is stored
	// verbatim as the archive key.
	Name string

	// Contents is the full file content.
	Contents []byte

	// FileSize is the size reported by the filesystem when the file was
	// read. It may differ from len(Contents) if the file changed between
	// stat and read; the archive preserves both.
	FileSize uint64

	// TimeStamp is the file's last-modified time in Unix seconds. The
	// format treats it as an opaque integer.
	TimeStamp uint64
}

// Stats holds running counters for one build. They are updated exactly
// once per flushed chunk.
type Stats struct {
	// FileCount is the number of files written to the archive.
	FileCount int

	// InputBytes is the total uncompressed chunk body size.
	InputBytes uint64

	// OutputBytes is the total compressed chunk body size.
	OutputBytes uint64
}

// chunk accumulates file records until the builder flushes it. totalSize
// tracks content bytes only; names and entry headers do not count toward
// the chunk threshold.
type chunk struct {
	files     []FileRecord
	totalSize int
}

func (c *chunk) append(rec FileRecord) {
	c.files = append(c.files, rec)
	c.totalSize += len(rec.Contents)
}

func (c *chunk) reset() {
	c.files = nil
	c.totalSize = 0
}
