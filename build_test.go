package grepdex

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grepdex/grepdex/internal/testutil"
)

func TestBuildProjectTwoExplicitFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("world"), 0o644))

	projectPath := filepath.Join(dir, "project.cfg")
	testutil.WriteProject(t, projectPath,
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	)

	stats, err := BuildProject(projectPath)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FileCount)

	// Both files fit the default threshold: the archive must hold a
	// container header and exactly one chunk record with two entries
	// whose offsets resolve to the original names and contents.
	archivePath := filepath.Join(dir, "project.gdx")
	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	r, err := NewReader(f)
	require.NoError(t, err)

	header, files, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), header.FileCount)
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join(dir, "a.txt"), files[0].Name)
	assert.Equal(t, []byte("hi"), files[0].Contents)
	assert.Equal(t, uint64(2), files[0].FileSize)
	assert.Equal(t, filepath.Join(dir, "b.txt"), files[1].Name)
	assert.Equal(t, []byte("world"), files[1].Contents)
	assert.Equal(t, uint64(5), files[1].FileSize)

	_, _, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestBuildProjectScanWithPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string][]byte{
		"tree/src/a.go":      []byte("package a"),
		"tree/src/b.go":      []byte("package b"),
		"tree/src/notes.txt": []byte("skip me"),
		"tree/gen/c.go":      []byte("package c"),
	})

	projectPath := filepath.Join(dir, "scan.cfg")
	testutil.WriteProject(t, projectPath,
		"path "+filepath.Join(dir, "tree"),
		`include \.go$`,
		`exclude gen`,
	)

	stats, err := BuildProject(projectPath)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FileCount)

	files, err := ReadArchive(filepath.Join(dir, "scan.gdx"))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "tree", "src", "a.go"), files[0].Name)
	assert.Equal(t, filepath.Join(dir, "tree", "src", "b.go"), files[1].Name)
}

func TestBuildProjectInvalidPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	projectPath := filepath.Join(dir, "bad.cfg")
	testutil.WriteProject(t, projectPath, `include [unclosed`)

	_, err := BuildProject(projectPath)
	require.Error(t, err)

	// A configuration error publishes nothing and leaves no temp file
	// behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "bad.cfg", e.Name())
	}
}

func TestBuildProjectMissingProjectFile(t *testing.T) {
	t.Parallel()

	_, err := BuildProject(filepath.Join(t.TempDir(), "gone.cfg"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildProjectSkipsUnreadableFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.txt"), []byte("kept"), 0o644))

	projectPath := filepath.Join(dir, "p.cfg")
	testutil.WriteProject(t, projectPath,
		filepath.Join(dir, "absent.txt"),
		filepath.Join(dir, "good.txt"),
	)

	var warned []string
	stats, err := BuildProject(projectPath, WithWarnings(func(path string, err error) {
		warned = append(warned, path)
		assert.True(t, IsFileError(err))
	}))
	require.NoError(t, err)

	// The unreadable file is skipped with a warning; the run still
	// publishes a complete archive holding the remaining file.
	assert.Equal(t, []string{filepath.Join(dir, "absent.txt")}, warned)
	assert.Equal(t, 1, stats.FileCount)

	files, err := ReadArchive(filepath.Join(dir, "p.gdx"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, []byte("kept"), files[0].Contents)
}

func TestBuildProjectParallelMatchesSerial(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tree := make(map[string][]byte, 30)
	for i := 0; i < 30; i++ {
		tree[filepath.Join("data", string(rune('a'+i)))+".txt"] = testutil.Repeat("payload ", 600+i*37)
	}
	testutil.WriteTree(t, dir, tree)

	serialProject := filepath.Join(dir, "serial.cfg")
	parallelProject := filepath.Join(dir, "parallel.cfg")
	testutil.WriteProject(t, serialProject, "path "+filepath.Join(dir, "data"))
	testutil.WriteProject(t, parallelProject, "path "+filepath.Join(dir, "data"))

	_, err := BuildProject(serialProject, WithChunkSize(2048))
	require.NoError(t, err)
	_, err = BuildProject(parallelProject, WithChunkSize(2048), WithWorkers(4))
	require.NoError(t, err)

	serial, err := os.ReadFile(filepath.Join(dir, "serial.gdx"))
	require.NoError(t, err)
	parallel, err := os.ReadFile(filepath.Join(dir, "parallel.gdx"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(serial, parallel))
}

func TestBuildProjectReplacesExistingArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("v2"), 0o644))

	projectPath := filepath.Join(dir, "p.cfg")
	testutil.WriteProject(t, projectPath, filepath.Join(dir, "f.txt"))

	archivePath := filepath.Join(dir, "p.gdx")
	require.NoError(t, os.WriteFile(archivePath, []byte("stale"), 0o644))

	_, err := BuildProject(projectPath)
	require.NoError(t, err)

	files, err := ReadArchive(archivePath)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, []byte("v2"), files[0].Contents)
}

func TestBuildProjectProgressStages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("data"), 0o644))

	projectPath := filepath.Join(dir, "p.cfg")
	testutil.WriteProject(t, projectPath, filepath.Join(dir, "f.txt"))

	var stages []ProgressStage
	_, err := BuildProject(projectPath, WithProgress(func(ev ProgressEvent) {
		stages = append(stages, ev.Stage)
	}))
	require.NoError(t, err)

	require.NotEmpty(t, stages)
	assert.Equal(t, StageScanning, stages[0])
	assert.Contains(t, stages, StageArchiving)
	assert.Equal(t, StagePublishing, stages[len(stages)-1])
}
