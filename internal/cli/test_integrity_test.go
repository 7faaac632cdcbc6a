package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTest_ReportsOKForValidArchive(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")
	writeTestArchive(t, archivePath, map[string]string{"a.txt": "hello", "b.txt": "world"})

	rootCmd.SetArgs([]string{"test", archivePath})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), "OK: 2 entries verified")
}
