package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// FlagValues collects all parsed global flag values from the CLI. This
// struct is populated by BindFlags and passed to downstream pipeline
// stages. It mirrors the zip-style flag surface of spec.md section 6.
type FlagValues struct {
	Recurse   bool // -r, default on
	Verbose   bool // -v
	Quiet     bool // -q
	Force     bool // -f
	JunkPaths bool // -j

	StoreOnly       bool // -0
	BestCompression bool // -9
	CompressionLevel int // derived from -0/-9, default 6

	OutputDir string // -d, consumed by extract

	IgnoreFile string // -I, disables hierarchical load when set

	Includes []string // --include, doublestar globs (section 2.3 of SPEC_FULL.md)
	Excludes []string // --exclude, doublestar globs

	OnConflict string // --on-conflict: skip|overwrite|newer

	JSONLogs bool // --json-logs

	MaxExtractFiles      int
	MaxExtractSize       int64
	MaxCompressionRatio  int
}

// BindFlags registers all persistent flags shared by every subcommand and
// returns a FlagValues pointer that is populated once Cobra parses argv.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{
		OnConflict: "overwrite",
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&fv.Recurse, "recurse", "r", true, "recurse into directories")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress non-error output")
	pf.BoolVarP(&fv.Force, "force", "f", false, "overwrite on extract; bypass safety caps")
	pf.BoolVarP(&fv.JunkPaths, "junk-paths", "j", false, "store files by basename only")
	pf.BoolVarP(&fv.StoreOnly, "store-only", "0", false, "store files without compression")
	pf.BoolVarP(&fv.BestCompression, "best", "9", false, "use best compression level")
	pf.StringVarP(&fv.OutputDir, "output-dir", "d", "", "default extraction directory, overridden by extract's positional argument")
	pf.StringVarP(&fv.IgnoreFile, "ignore-file", "I", "", "explicit ignore file, disables hierarchical .zipignore load")
	pf.StringArrayVar(&fv.Includes, "include", nil, "include glob pattern (repeatable, doublestar syntax)")
	pf.StringArrayVar(&fv.Excludes, "exclude", nil, "exclude glob pattern (repeatable, doublestar syntax)")
	pf.StringVar(&fv.OnConflict, "on-conflict", "overwrite", "conflict policy name: skip, overwrite, newer (validated only; extract overwrites existing files only with --force)")
	pf.BoolVar(&fv.JSONLogs, "json-logs", false, "emit structured JSON logs instead of text")
	pf.IntVar(&fv.MaxExtractFiles, "max-extract-files", DefaultMaxExtractFiles, "maximum entries extracted from one archive")
	pf.StringVar(&maxExtractSizeRaw, "max-extract-size", "16GB", "maximum total uncompressed bytes extracted")
	pf.IntVar(&fv.MaxCompressionRatio, "max-compression-ratio", DefaultMaxCompressionRatio, "maximum per-entry compression ratio before a safety abort")

	return fv
}

// maxExtractSizeRaw holds the raw string form of --max-extract-size until
// ValidateFlags parses it with ParseSize.
var maxExtractSizeRaw string

// ValidateFlags checks parsed flag values for correctness and mutual
// exclusion, applies environment variable fallbacks, and normalizes derived
// fields such as CompressionLevel. Call this from PersistentPreRunE after
// Cobra has parsed the flags.
func ValidateFlags(fv *FlagValues, cmd *cobra.Command) error {
	applyEnvOverrides(fv, cmd)

	if fv.Verbose && fv.Quiet {
		return ValidationError{Field: "--verbose/--quiet", Message: "mutually exclusive flags, last one wins is not applied to explicit conflicts"}
	}

	switch fv.OnConflict {
	case "skip", "overwrite", "newer":
	default:
		return ValidationError{
			Field:   "--on-conflict",
			Message: fmt.Sprintf("invalid value %q", fv.OnConflict),
			Suggest: "use one of: skip, overwrite, newer",
		}
	}

	switch {
	case fv.StoreOnly && fv.BestCompression:
		return ValidationError{Field: "-0/-9", Message: "store-only and best-compression are mutually exclusive"}
	case fv.StoreOnly:
		fv.CompressionLevel = 0
	case fv.BestCompression:
		fv.CompressionLevel = 9
	default:
		fv.CompressionLevel = DefaultCompressionLevel
	}

	size, err := ParseSize(maxExtractSizeRaw)
	if err != nil {
		return ValidationError{Field: "--max-extract-size", Message: err.Error()}
	}
	fv.MaxExtractSize = size

	return nil
}

// applyEnvOverrides applies GBZIP_-prefixed environment variable fallbacks
// for flags that were not explicitly set on the command line.
func applyEnvOverrides(fv *FlagValues, cmd *cobra.Command) {
	if v := os.Getenv("GBZIP_IGNORE_FILE"); v != "" && !cmd.Flags().Changed("ignore-file") {
		fv.IgnoreFile = v
	}
	if os.Getenv("GBZIP_VERBOSE") == "1" && !cmd.Flags().Changed("verbose") {
		fv.Verbose = true
	}
	if os.Getenv("GBZIP_QUIET") == "1" && !cmd.Flags().Changed("quiet") {
		fv.Quiet = true
	}
}

// ParseSize parses a human-readable size string into bytes. It supports KB,
// MB, and GB suffixes (case-insensitive, binary multiples). Plain numbers
// without a suffix are treated as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)

	var suffix string
	var multiplier int64

	switch {
	case strings.HasSuffix(upper, "GB"):
		suffix, multiplier = "GB", 1<<30
	case strings.HasSuffix(upper, "MB"):
		suffix, multiplier = "MB", 1<<20
	case strings.HasSuffix(upper, "KB"):
		suffix, multiplier = "KB", 1<<10
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return n, nil
	}

	numStr := strings.TrimSpace(s[:len(s)-len(suffix)])
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(numStr, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if f < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return int64(f * float64(multiplier)), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("size must be non-negative: %q", s)
	}
	return n * multiplier, nil
}
