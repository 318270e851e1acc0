// Package testutil provides shared helpers for grepdex tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates the given files under dir. Map keys are
// slash-separated paths relative to dir; parent directories are created
// as needed. Returns the absolute paths of the created files, in map
// iteration order.
func WriteTree(tb testing.TB, dir string, files map[string][]byte) []string {
	tb.Helper()

	paths := make([]string, 0, len(files))
	for rel, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, contents, 0o644); err != nil {
			tb.Fatalf("write %s: %v", rel, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// WriteProject writes a project description file assembled from lines.
func WriteProject(tb testing.TB, path string, lines ...string) {
	tb.Helper()

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		tb.Fatalf("write project file: %v", err)
	}
}

// Repeat returns s repeated until the result is exactly n bytes,
// truncating the final copy. Useful for generating compressible
// content of a precise size.
func Repeat(s string, n int) []byte {
	if n == 0 {
		return nil
	}
	b := make([]byte, 0, n+len(s))
	for len(b) < n {
		b = append(b, s...)
	}
	return b[:n]
}
