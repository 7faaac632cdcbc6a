package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/pipeline"
)

var initIgnoreTemplate = `# Add patterns to ignore files/directories in ZIP archives
# Patterns in this file apply to the current directory and all subdirectories.
# You can place .zipignore files in subdirectories for directory-specific rules.
#
# Example patterns:
# *.tmp          - Ignore all .tmp files
# build/         - Ignore the build directory
# .git/          - Ignore the .git directory
# !important.tmp - Negation: don't ignore this file
`

var initIgnoreCmd = &cobra.Command{
	Use:     "init-ignore",
	Aliases: []string{"Z"},
	Short:   "Write a template .zipignore file in the current directory",
	Args:    cobra.NoArgs,
	RunE:    runInitIgnore,
}

func init() {
	rootCmd.AddCommand(initIgnoreCmd)
}

func runInitIgnore(cmd *cobra.Command, args []string) error {
	path := filepath.Join(".", config.ZipignoreFilename)

	fv := GlobalFlags()
	if _, err := os.Stat(path); err == nil && !fv.Force {
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: %s already exists. Use -f to overwrite.\n", config.ZipignoreFilename)
		return nil
	}

	if err := os.WriteFile(path, []byte(initIgnoreTemplate), 0o644); err != nil {
		return pipeline.NewIoFailureError("writing "+config.ZipignoreFilename, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.ZipignoreFilename)
	return nil
}
