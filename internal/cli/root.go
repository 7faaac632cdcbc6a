// Package cli implements the Cobra command hierarchy for the gbzip CLI
// tool. The root command defined here is the entry point for all
// subcommands and handles cross-cutting concerns like logging
// initialization and error handling.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/pipeline"
)

// flagValues holds the parsed global flag values, populated by
// config.BindFlags during command initialization and validated in
// PersistentPreRunE.
var flagValues *config.FlagValues

var rootCmd = &cobra.Command{
	Use:   "gbzip",
	Short: "Build, inspect, and update ZIP archives with gitignore-style exclusion.",
	Long: `gbzip packages a directory into a ZIP archive, applying hierarchical
.zipignore exclusion rules, optional include/exclude globs, and parallel
pre-compression for large files.

With no subcommand, gbzip behaves like "gbzip create": the first
argument is the archive path and the remainder are input files or
directories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateFlags(flagValues, cmd); err != nil {
			return err
		}

		level := config.ResolveLogLevel(flagValues.Verbose, flagValues.Quiet)
		format := config.ResolveLogFormat()
		if flagValues.JSONLogs {
			format = "json"
		}
		config.SetupLogging(level, format)

		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
	// When no subcommand is given, behave like "create".
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, args)
	},
}

func init() {
	flagValues = config.BindFlags(rootCmd)
	rootCmd.RegisterFlagCompletionFunc("on-conflict", completeOnConflict)
	rootCmd.SetFlagErrorFunc(flagErrorFunc)
}

// completeOnConflict returns the valid values for the --on-conflict flag.
func completeOnConflict(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"skip", "overwrite", "newer"}, cobra.ShellCompDirectiveNoFileComp
}

// flagErrorFunc overrides Cobra's default so unknown or malformed flags
// always surface as an InvalidArgs error and exit 2, per spec §6.
func flagErrorFunc(cmd *cobra.Command, err error) error {
	return pipeline.NewInvalidArgsError(fmt.Sprintf("%s: %v", cmd.Name(), err), err)
}

// Execute runs the root command and returns an appropriate exit code. If
// the error is a *pipeline.GbzipError, its ExitCode() is used.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return extractExitCode(err)
	}
	return 0
}

// extractExitCode determines the process exit code from an error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var gbzipErr *pipeline.GbzipError
	if errors.As(err, &gbzipErr) {
		return gbzipErr.ExitCode()
	}
	return 1
}

// RootCmd returns the root cobra.Command for use in testing and
// subcommand registration.
func RootCmd() *cobra.Command {
	return rootCmd
}

// GlobalFlags returns the parsed global flag values. This is available
// after PersistentPreRunE has run. Subcommands use this to access shared
// configuration.
func GlobalFlags() *config.FlagValues {
	return flagValues
}
