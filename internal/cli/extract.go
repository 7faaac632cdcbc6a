package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbzip/gbzip/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:     "extract <archive> [dir]",
	Aliases: []string{"x"},
	Short:   "Extract an archive's contents to a directory",
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	fv := GlobalFlags()

	outDir := "."
	if fv.OutputDir != "" {
		outDir = fv.OutputDir
	}
	if len(args) == 2 {
		outDir = args[1]
	}

	result, err := extract.Extract(extract.Options{
		ArchivePath:         archivePath,
		OutputDir:           outDir,
		Force:               fv.Force,
		MaxExtractFiles:     fv.MaxExtractFiles,
		MaxExtractSize:      fv.MaxExtractSize,
		MaxCompressionRatio: int64(fv.MaxCompressionRatio),
		Reporter:            newCLIReporter(fv),
	})
	if err != nil {
		return err
	}

	if !fv.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "extracted %d files, %d bytes into %s\n", result.FilesExtracted, result.BytesWritten, outDir)
		for _, skipped := range result.Skipped {
			fmt.Fprintf(cmd.OutOrStdout(), "skipped unsafe entry: %s\n", skipped)
		}
	}
	return nil
}
