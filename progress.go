package grepdex

// ProgressEvent represents a progress update during a build.
type ProgressEvent struct {
	// Stage identifies the current phase of the build.
	Stage ProgressStage

	// Path is the file currently being processed, if applicable.
	Path string

	// FilesDone is the number of files written to the archive so far.
	FilesDone int

	// FilesTotal is the total number of selected files.
	// Zero indicates the total is not yet known (e.g. while scanning).
	FilesTotal int

	// InputBytes is the total uncompressed bytes written so far.
	InputBytes uint64

	// OutputBytes is the total compressed bytes written so far.
	OutputBytes uint64
}

// ProgressStage identifies the current phase of a build.
type ProgressStage uint8

const (
	// StageScanning indicates the selection pipeline is enumerating
	// files under the configured scan roots.
	StageScanning ProgressStage = iota

	// StageArchiving indicates files are being read, chunked,
	// compressed, and written.
	StageArchiving

	// StagePublishing indicates the finished archive is being renamed
	// into place.
	StagePublishing
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageScanning:
		return "scanning"
	case StageArchiving:
		return "archiving"
	case StagePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during a build.
// Implementations must be safe for concurrent calls: with parallel
// compression enabled, chunk completion events arrive from the writer
// goroutine.
type ProgressFunc func(ProgressEvent)
