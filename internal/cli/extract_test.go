package cli

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestRunExtract_WritesFilesToOutputDir(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")
	writeTestArchive(t, archivePath, map[string]string{"a.txt": "hello"})

	outDir := filepath.Join(dir, "out")

	rootCmd.SetArgs([]string{"extract", archivePath, outDir})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code, buf.String())

	data, err := os.ReadFile(filepath.Join(outDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestRunExtract_DefaultsOutputDirToCwd(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")
	writeTestArchive(t, archivePath, map[string]string{"a.txt": "hi"})

	outDir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(outDir))
	defer os.Chdir(oldwd)

	rootCmd.SetArgs([]string{"extract", archivePath})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code, buf.String())

	_, err = os.Stat(filepath.Join(outDir, "a.txt"))
	require.NoError(t, err)
}
