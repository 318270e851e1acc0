package grepdex

import (
	"fmt"
	"os"
	"path/filepath"
)

// BuildProject builds the archive described by the project file at
// projectPath and publishes it next to the project with the ArchiveExt
// extension.
//
// The archive is written to a temporary file in the target directory
// and renamed into place only after every selected file has been
// processed and the final chunk flushed, so a published archive is
// never partially written. On any fatal error the temporary file is
// removed and the previously published archive, if any, is left
// untouched.
//
// Recoverable per-file read errors are reported through WithWarnings
// and skip just that file. Configuration errors (unreadable project
// file, invalid include/exclude pattern) and archive write errors are
// fatal.
func BuildProject(projectPath string, opts ...Option) (Stats, error) {
	cfg := resolveConfig(opts)

	project, err := LoadProject(projectPath)
	if err != nil {
		return Stats{}, err
	}

	if cfg.progress != nil {
		cfg.progress(ProgressEvent{Stage: StageScanning})
	}
	files, err := SelectFiles(project)
	if err != nil {
		return Stats{}, err
	}

	target := OutputPath(projectPath)
	stats, err := buildArchive(target, files, cfg, opts)
	if err != nil {
		return Stats{}, err
	}

	if cfg.progress != nil {
		cfg.progress(ProgressEvent{
			Stage:       StagePublishing,
			FilesDone:   stats.FileCount,
			FilesTotal:  len(files),
			InputBytes:  stats.InputBytes,
			OutputBytes: stats.OutputBytes,
		})
	}
	return stats, nil
}

// buildArchive streams files through a Builder into a temp file and
// atomically renames it to target on success.
func buildArchive(target string, files []string, cfg buildConfig, opts []Option) (Stats, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".grepdex-*")
	if err != nil {
		return Stats{}, fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	published := false
	defer func() {
		tmp.Close()
		if !published {
			os.Remove(tmpPath)
		}
	}()

	builder, err := NewBuilder(tmp, opts...)
	if err != nil {
		return Stats{}, err
	}

	for i, path := range files {
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{
				Stage:      StageArchiving,
				Path:       path,
				FilesDone:  i,
				FilesTotal: len(files),
			})
		}
		if err := builder.AppendFile(path); err != nil {
			if IsFileError(err) {
				if cfg.warn != nil {
					cfg.warn(path, err)
				}
				continue
			}
			return Stats{}, err
		}
	}

	if err := builder.Close(); err != nil {
		return Stats{}, err
	}
	if err := tmp.Close(); err != nil {
		return Stats{}, fmt.Errorf("close temp archive: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return Stats{}, fmt.Errorf("publish archive: %w", err)
	}
	published = true

	return builder.Stats(), nil
}
