package diffengine

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbzip/gbzip/internal/ignore"
	"github.com/gbzip/gbzip/internal/pipeline"
)

func buildFixtureArchive(t *testing.T, path string, entries map[string]struct {
	content string
	mtime   time.Time
}) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, e := range entries {
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: e.mtime}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestReadIndex_SkipsDirectoriesAndReportsSizeMtime(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	base := time.Unix(1700000000, 0)

	buildFixtureArchive(t, archivePath, map[string]struct {
		content string
		mtime   time.Time
	}{
		"a.txt": {content: "hello", mtime: base},
	})

	idx, err := ReadIndex(archivePath)
	require.NoError(t, err)
	require.Contains(t, idx.Entries, "a.txt")
	assert.EqualValues(t, 5, idx.Entries["a.txt"].Size)
}

func TestCompute_AddedModifiedDeleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	base := time.Unix(1700000000, 0)

	buildFixtureArchive(t, archivePath, map[string]struct {
		content string
		mtime   time.Time
	}{
		"a.txt":    {content: "0123456789", mtime: base}, // will be modified (size changes)
		"gone.txt": {content: "bye", mtime: base},         // will be deleted
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("012345678901234"), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.txt"), base.Add(time.Hour), base.Add(time.Hour)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0o644))

	idx, err := ReadIndex(archivePath)
	require.NoError(t, err)

	ctx := ignore.NewContext(dir)
	require.NoError(t, ctx.LoadInitial(""))

	changes, _, err := Compute(idx, dir, ctx)
	require.NoError(t, err)

	summary := changes.Summarize()
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Modified)
	assert.Equal(t, 1, summary.Deleted)

	byPath := map[string]pipeline.ChangeKind{}
	for _, c := range changes.Changes {
		byPath[c.ArchivePath] = c.Kind
	}
	assert.Equal(t, pipeline.Modified, byPath["a.txt"])
	assert.Equal(t, pipeline.Deleted, byPath["gone.txt"])
	assert.Equal(t, pipeline.Added, byPath["new.txt"])
}

func TestCompute_EqualMtimeSameSizeIsUnchanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	base := time.Unix(1700000000, 0)

	buildFixtureArchive(t, archivePath, map[string]struct {
		content string
		mtime   time.Time
	}{
		"a.txt": {content: "hello", mtime: base},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.txt"), base, base))

	idx, err := ReadIndex(archivePath)
	require.NoError(t, err)
	ctx := ignore.NewContext(dir)
	require.NoError(t, ctx.LoadInitial(""))

	changes, _, err := Compute(idx, dir, ctx)
	require.NoError(t, err)
	assert.Empty(t, changes.Changes)
}

func TestApply_RebuildsArchiveWithChangeSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	base := time.Unix(1700000000, 0)

	buildFixtureArchive(t, archivePath, map[string]struct {
		content string
		mtime   time.Time
	}{
		"a.txt":    {content: "0123456789", mtime: base},
		"gone.txt": {content: "bye", mtime: base},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("012345678901234"), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "a.txt"), base.Add(time.Hour), base.Add(time.Hour)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0o644))

	idx, err := ReadIndex(archivePath)
	require.NoError(t, err)
	ctx := ignore.NewContext(dir)
	require.NoError(t, ctx.LoadInitial(""))

	changes, current, err := Compute(idx, dir, ctx)
	require.NoError(t, err)

	require.NoError(t, Apply(archivePath, changes, current, -1, nil))

	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	assert.True(t, names["a.txt"])
	assert.True(t, names["new.txt"])
	assert.False(t, names["gone.txt"])
}

func TestApply_PreservesUnchangedDirectoriesAndAddsNewOnes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")
	base := time.Unix(1700000000, 0)

	func() {
		f, err := os.Create(archivePath)
		require.NoError(t, err)
		defer f.Close()

		zw := zip.NewWriter(f)
		dirHdr := &zip.FileHeader{Name: "sub/", Modified: base}
		dirHdr.SetMode(os.ModeDir | 0o755)
		_, err = zw.CreateHeader(dirHdr)
		require.NoError(t, err)

		fileHdr := &zip.FileHeader{Name: "sub/a.txt", Method: zip.Deflate, Modified: base}
		w, err := zw.CreateHeader(fileHdr)
		require.NoError(t, err)
		_, err = w.Write([]byte("hello"))
		require.NoError(t, err)

		require.NoError(t, zw.Close())
	}()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "newdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "newdir", "b.txt"), []byte("new"), 0o644))

	idx, err := ReadIndex(archivePath)
	require.NoError(t, err)
	ctx := ignore.NewContext(dir)
	require.NoError(t, ctx.LoadInitial(""))

	changes, current, err := Compute(idx, dir, ctx)
	require.NoError(t, err)

	require.NoError(t, Apply(archivePath, changes, current, -1, nil))

	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}
	assert.True(t, names["sub/"], "unchanged directory must survive diff apply")
	assert.True(t, names["sub/a.txt"])
	assert.True(t, names["newdir/"], "newly created directory must appear after diff apply")
	assert.True(t, names["newdir/b.txt"])
}
