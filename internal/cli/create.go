package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbzip/gbzip/internal/collector"
	"github.com/gbzip/gbzip/internal/compress"
	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/diffengine"
	"github.com/gbzip/gbzip/internal/ignore"
	"github.com/gbzip/gbzip/internal/pipeline"
	"github.com/gbzip/gbzip/internal/platform"
)

var createCmd = &cobra.Command{
	Use:     "create <archive> <paths...>",
	Aliases: []string{"c"},
	Short:   "Create or overwrite a ZIP archive from one or more paths",
	Args:    cobra.ArbitraryArgs,
	RunE:    runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

// runCreate implements "gbzip create <archive> <paths...>". When invoked
// as the bare root command, args already has this same shape (archive
// followed by input paths).
func runCreate(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return pipeline.NewInvalidArgsError("create requires an archive path", nil)
	}
	archivePath := args[0]
	roots := args[1:]
	if len(roots) == 0 {
		roots = []string{"."}
	}

	fv := GlobalFlags()

	archiveAbs, err := platform.Canonicalize(archivePath)
	if err != nil {
		return pipeline.NewInvalidArgsError("resolving archive path", err)
	}

	ignoreCtx := ignore.NewContext(mustBaseDir(roots[0]))
	if err := ignoreCtx.LoadInitial(fv.IgnoreFile); err != nil {
		return pipeline.NewIoFailureError("loading .zipignore", err)
	}

	var filter *collector.PatternFilter
	if len(fv.Includes) > 0 || len(fv.Excludes) > 0 {
		filter = collector.NewPatternFilter(fv.Includes, fv.Excludes)
	}

	entries, summary, err := collector.Collect(collector.Options{
		Roots:          roots,
		Ignore:         ignoreCtx,
		Filter:         filter,
		JunkPaths:      fv.JunkPaths,
		NoRecurse:      !fv.Recurse,
		ArchiveAbsPath: archiveAbs,
	})
	if err != nil {
		return err
	}

	rootAbs, err := platform.Canonicalize(roots[0])
	if err != nil {
		return pipeline.NewInvalidArgsError("resolving collection root", err)
	}

	reporter := newCLIReporter(fv)
	worker := config.ClampWorkers(platform.HardwareParallelism())

	result, err := compress.Build(context.Background(), compress.Options{
		OutputPath:       archivePath,
		Entries:          entries,
		Summary:          summary,
		CompressionLevel: fv.CompressionLevel,
		MaxWorkers:       worker,
		Reporter:         reporter,
		Comment:          diffengine.SourceDirCommentPrefix + rootAbs,
	})
	if err != nil {
		return err
	}

	if !fv.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s: %d files, %d bytes (%d pre-compressed, %d streamed)\n",
			archivePath, result.FilesWritten, result.BytesWritten, result.PrecompressedCount, result.StreamedCount)
	}
	return nil
}

// mustBaseDir returns the absolute directory to scope the ignore context
// to: root itself if it is (or will become) a directory, else its parent.
func mustBaseDir(root string) string {
	abs, err := platform.Canonicalize(root)
	if err != nil {
		return root
	}
	if st, err := platform.FileStat(abs); err == nil && !st.IsDir {
		return parentDir(abs)
	}
	return abs
}
