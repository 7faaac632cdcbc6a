package cli

import (
	"archive/zip"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbzip/gbzip/internal/pipeline"
)

var listCmd = &cobra.Command{
	Use:     "list <archive>",
	Aliases: []string{"l", "ls"},
	Short:   "List an archive's entries",
	Args:    cobra.ExactArgs(1),
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := zip.OpenReader(args[0])
	if err != nil {
		return pipeline.NewArchiveCorruptError("opening archive", err)
	}
	defer r.Close()

	var totalSize, totalCompressed int64
	for _, f := range r.File {
		kind := "  "
		if f.FileInfo().IsDir() {
			kind = "d "
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%10d %10d  %s  %s\n",
			kind, f.UncompressedSize64, f.CompressedSize64, f.Modified.Format("2006-01-02 15:04"), f.Name)
		totalSize += int64(f.UncompressedSize64)
		totalCompressed += int64(f.CompressedSize64)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %d bytes uncompressed, %d bytes compressed\n", len(r.File), totalSize, totalCompressed)
	return nil
}
