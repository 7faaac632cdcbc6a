package cli

import (
	"testing"

	"github.com/gbzip/gbzip/internal/config"
)

// resetGlobalFlags restores flagValues and the underlying pflag.FlagSet to
// their default state before a CLI integration test runs a fresh
// rootCmd.Execute(). Cobra's flag parsing does not reset unseen flags to
// their default between Execute() calls, so tests that exercise different
// flag combinations on the shared rootCmd must reset explicitly.
func resetGlobalFlags(t *testing.T) {
	t.Helper()

	*flagValues = config.FlagValues{OnConflict: "overwrite"}

	pf := rootCmd.PersistentFlags()
	pf.Set("recurse", "true")
	pf.Set("verbose", "false")
	pf.Set("quiet", "false")
	pf.Set("force", "false")
	pf.Set("junk-paths", "false")
	pf.Set("store-only", "false")
	pf.Set("best", "false")
	pf.Set("ignore-file", "")
	pf.Set("on-conflict", "overwrite")
	pf.Set("json-logs", "false")
	pf.Set("max-extract-size", "16GB")
	pf.Set("output-dir", "")

	// StringArrayVar's Set appends rather than replaces, and pflag does not
	// clear the Changed marker between Execute() calls on its own; reset
	// both explicitly so leftover --include/--exclude values from a prior
	// test don't leak into the next one.
	for _, name := range []string{"include", "exclude", "ignore-file"} {
		if f := pf.Lookup(name); f != nil {
			f.Changed = false
		}
	}

	diffCmd.Flags().Set("apply", "false")
}
