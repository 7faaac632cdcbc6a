package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbzip/gbzip/internal/diffengine"
	"github.com/gbzip/gbzip/internal/ignore"
	"github.com/gbzip/gbzip/internal/pipeline"
)

var diffApply bool

var diffCmd = &cobra.Command{
	Use:     "diff <archive> [dir]",
	Aliases: []string{"D", "u"},
	Short:   "Compare an archive against a directory and optionally update it in place",
	Long: `Compare an archive's recorded entries against the current state of dir,
reporting added, modified and deleted files. dir defaults to the
collection root recorded in the archive's comment at "gbzip create" time,
matching the original tool's "-u" update shorthand.

Modification detection uses a strict "current mtime > archive mtime"
comparison: a file whose content changed without advancing its mtime is
not reported as modified.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffApply, "apply", false, "rewrite the archive in place with the computed changes")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	idx, err := diffengine.ReadIndex(archivePath)
	if err != nil {
		return err
	}

	dir := idx.SourceDir
	if len(args) == 2 {
		dir = args[1]
	}
	if dir == "" {
		return pipeline.NewInvalidArgsError("diff requires a directory argument when the archive has no recorded source directory", nil)
	}

	fv := GlobalFlags()

	ignoreCtx := ignore.NewContext(dir)
	if err := ignoreCtx.LoadInitial(fv.IgnoreFile); err != nil {
		return pipeline.NewIoFailureError("loading .zipignore", err)
	}

	changes, current, err := diffengine.Compute(idx, dir, ignoreCtx)
	if err != nil {
		return err
	}

	summary := changes.Summarize()
	fmt.Fprintf(cmd.OutOrStdout(), "%d added, %d modified, %d deleted\n", summary.Added, summary.Modified, summary.Deleted)
	for _, c := range changes.Changes {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", c.Kind, c.ArchivePath)
	}

	if diffApply && len(changes.Changes) > 0 {
		if err := diffengine.Apply(archivePath, changes, current, fv.CompressionLevel, newCLIReporter(fv)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", archivePath)
	}

	return nil
}
