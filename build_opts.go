package grepdex

// buildConfig holds the resolved options for a Builder or a BuildProject
// run.
type buildConfig struct {
	chunkSize int
	workers   int
	progress  ProgressFunc
	warn      WarnFunc
}

// WarnFunc receives recoverable per-file errors during a build. The
// offending file is skipped and the build continues.
type WarnFunc func(path string, err error)

// Option configures a Builder or a BuildProject run.
type Option func(*buildConfig)

// WithChunkSize sets the chunk accumulation threshold in bytes. A chunk
// is flushed once its content size exceeds the threshold, so a chunk may
// exceed it by at most one file's size. Values <= 0 keep
// DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(cfg *buildConfig) {
		if n > 0 {
			cfg.chunkSize = n
		}
	}
}

// WithWorkers enables parallel chunk compression with n workers. Chunks
// are still formed sequentially and written to the archive in formation
// order; only the compression work is fanned out. Values <= 1 keep the
// default synchronous behavior.
func WithWorkers(n int) Option {
	return func(cfg *buildConfig) {
		if n > 1 {
			cfg.workers = n
		}
	}
}

// WithProgress registers a callback for progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(cfg *buildConfig) {
		cfg.progress = fn
	}
}

// WithWarnings registers a callback for recoverable per-file errors.
// Without it, skipped files are silent.
func WithWarnings(fn WarnFunc) Option {
	return func(cfg *buildConfig) {
		cfg.warn = fn
	}
}

func resolveConfig(opts []Option) buildConfig {
	cfg := buildConfig{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
