package cli

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/progress"
	"github.com/gbzip/gbzip/internal/tui"
)

// newCLIReporter picks the progress.Reporter implementation matching the
// global --quiet/--verbose flags and whether stdout is a terminal: --quiet
// gets a Noop, --verbose (or a non-interactive stdout) gets a plain
// slog-backed LineReporter, and an interactive terminal otherwise gets the
// bubbletea TUI.
func newCLIReporter(fv *config.FlagValues) progress.Reporter {
	if fv == nil || fv.Quiet {
		return progress.Noop()
	}
	if fv.Verbose || !isatty.IsTerminal(os.Stdout.Fd()) {
		return progress.NewLineReporter(config.NewLogger("progress"))
	}
	return tui.New()
}

// parentDir returns the absolute parent directory of path.
func parentDir(path string) string {
	return filepath.Dir(path)
}
