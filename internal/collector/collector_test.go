package collector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbzip/gbzip/internal/ignore"
	"github.com/gbzip/gbzip/internal/pipeline"
)

func archivePaths(entries []pipeline.FileEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.ArchivePath
	}
	return paths
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollect_BasicTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "a")
	write(t, filepath.Join(root, "src", "main.go"), "package main")
	write(t, filepath.Join(root, "docs", "guide.md"), "# guide")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	entries, summary, err := Collect(Options{Roots: []string{root}, Ignore: ctx})
	require.NoError(t, err)

	files := 0
	for _, e := range entries {
		if !e.IsDirectory {
			files++
		}
	}
	assert.Equal(t, 3, files)
	assert.Equal(t, 3, summary.TotalFiles)
	assert.Contains(t, archivePaths(entries), "a.txt")
	assert.Contains(t, archivePaths(entries), "src/main.go")
	assert.Contains(t, archivePaths(entries), "docs/guide.md")
}

func TestCollect_IgnoredDirectoryPruned(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, filepath.Join(root, "keep.txt"), "k")
	write(t, filepath.Join(root, "build", "output.bin"), "b")
	write(t, filepath.Join(root, "build", "nested", "deep.bin"), "d")
	write(t, filepath.Join(root, ".zipignore"), "build/\n")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	entries, _, err := Collect(Options{Roots: []string{root}, Ignore: ctx})
	require.NoError(t, err)

	paths := archivePaths(entries)
	assert.Contains(t, paths, "keep.txt")
	for _, p := range paths {
		assert.NotContains(t, p, "build")
	}
}

func TestCollect_SingleFileRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "solo.txt")
	write(t, file, "solo")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	entries, summary, err := Collect(Options{Roots: []string{file}, Ignore: ctx})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "solo.txt", entries[0].ArchivePath)
	assert.Equal(t, 1, summary.TotalFiles)
}

func TestCollect_JunkPathsFlattensAndDropsDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, filepath.Join(root, "src", "main.go"), "package main")
	write(t, filepath.Join(root, "src", "nested", "util.go"), "package nested")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	entries, _, err := Collect(Options{Roots: []string{root}, Ignore: ctx, JunkPaths: true})
	require.NoError(t, err)

	for _, e := range entries {
		assert.False(t, e.IsDirectory)
		assert.NotContains(t, e.ArchivePath, "/")
	}
	assert.ElementsMatch(t, []string{"main.go", "util.go"}, archivePaths(entries))
}

func TestCollect_ArchiveSelfExcluded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, filepath.Join(root, "a.txt"), "a")
	archivePath := filepath.Join(root, "out.zip")
	write(t, archivePath, "pk")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	entries, _, err := Collect(Options{Roots: []string{root}, Ignore: ctx, ArchiveAbsPath: archivePath})
	require.NoError(t, err)

	assert.NotContains(t, archivePaths(entries), "out.zip")
}

func TestCollect_PatternFilterAppliesOnTopOfIgnore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, filepath.Join(root, "a.go"), "package a")
	write(t, filepath.Join(root, "b.md"), "# b")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))
	filter := NewPatternFilter([]string{"**/*.go"}, nil)

	entries, _, err := Collect(Options{Roots: []string{root}, Ignore: ctx, Filter: filter})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.go"}, archivePaths(entries))
}

func TestCollect_LargeFileCounted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	big := make([]byte, 2<<20)
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.bin"), big, 0o644))
	write(t, filepath.Join(root, "small.txt"), "s")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	_, summary, err := Collect(Options{Roots: []string{root}, Ignore: ctx})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LargeFileCount)
	assert.Equal(t, int64(2<<20), summary.LargeFileBytes)
}

func TestCollect_NoRecursePrunesSubdirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, filepath.Join(root, "top.txt"), "t")
	write(t, filepath.Join(root, "sub", "nested.txt"), "n")

	ctx := ignore.NewContext(root)
	require.NoError(t, ctx.LoadInitial(""))

	entries, _, err := Collect(Options{Roots: []string{root}, Ignore: ctx, NoRecurse: true})
	require.NoError(t, err)

	paths := archivePaths(entries)
	assert.Contains(t, paths, "top.txt")
	assert.NotContains(t, paths, "sub/nested.txt")
	assert.NotContains(t, paths, "sub/")
}

func TestCollect_MissingRootReturnsFileNotFound(t *testing.T) {
	t.Parallel()

	ctx := ignore.NewContext(t.TempDir())
	_, _, err := Collect(Options{Roots: []string{filepath.Join(t.TempDir(), "nope")}, Ignore: ctx})
	require.Error(t, err)
}
