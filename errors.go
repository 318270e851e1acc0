package grepdex

import "errors"

// Sentinel errors.
var (
	// ErrBadMagic is returned when an archive does not start with the
	// grepdex container magic.
	ErrBadMagic = errors.New("grepdex: bad archive magic")

	// ErrCorrupt is returned when a chunk record or its decoded body is
	// internally inconsistent (truncated data, out-of-range offsets,
	// mismatched sizes).
	ErrCorrupt = errors.New("grepdex: corrupt archive")

	// ErrClosed is returned when a Builder is used after Close.
	ErrClosed = errors.New("grepdex: builder is closed")
)
