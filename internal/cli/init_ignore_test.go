package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbzip/gbzip/internal/testutil"
)

func TestInitIgnoreTemplate_MatchesGolden(t *testing.T) {
	testutil.Golden(t, "zipignore-template", []byte(initIgnoreTemplate))
}

func TestRunInitIgnore_WritesTemplate(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(oldwd)

	rootCmd.SetArgs([]string{"init-ignore"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code, buf.String())

	data, err := os.ReadFile(filepath.Join(dir, ".zipignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "*.tmp")
	assert.Contains(t, string(data), "build/")
}

func TestRunInitIgnore_RefusesOverwriteWithoutForce(t *testing.T) {
	resetGlobalFlags(t)

	dir := t.TempDir()
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(oldwd)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zipignore"), []byte("custom\n"), 0o644))

	rootCmd.SetArgs([]string{"init-ignore"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), "already exists")

	data, err := os.ReadFile(filepath.Join(dir, ".zipignore"))
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}
