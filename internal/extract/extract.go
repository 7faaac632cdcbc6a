// Package extract implements extraction from a gbzip-compatible archive,
// enforcing the safety caps spec.md §6 shares with the core path model:
// a bound on entry count, total uncompressed size, and per-entry
// compression ratio, plus per-entry `is_safe_path` validation.
package extract

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/pathmodel"
	"github.com/gbzip/gbzip/internal/pipeline"
	"github.com/gbzip/gbzip/internal/progress"
)

// Options configures a single extraction.
type Options struct {
	ArchivePath string
	OutputDir   string

	// Force bypasses the ZIP-bomb guards (spec: "-f ... required to
	// bypass ZIP-bomb guards") and overwrites existing files.
	Force bool

	MaxExtractFiles      int
	MaxExtractSize       int64
	MaxCompressionRatio  int64

	Reporter progress.Reporter
}

// Result summarizes a completed extraction.
type Result struct {
	FilesExtracted int
	BytesWritten   int64
	Skipped        []string // entries rejected by is_safe_path, logged individually
}

// Extract opens ArchivePath and writes every safe entry under OutputDir.
// Exceeding the entry-count or total-size cap without Force aborts the
// whole extraction with a ResourceExhausted error, and exceeding the
// per-entry ratio cap with a SecurityViolation error (both exit code 3
// per spec §6); an individual entry
// failing is_safe_path is skipped with a warning rather than aborting.
func Extract(opts Options) (Result, error) {
	logger := config.NewLogger("extract")
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Noop()
	}

	r, err := zip.OpenReader(opts.ArchivePath)
	if err != nil {
		return Result{}, pipeline.NewArchiveCorruptError("opening archive", err)
	}
	defer r.Close()

	if !opts.Force {
		if err := checkCaps(r.File, opts); err != nil {
			return Result{}, err
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Result{}, pipeline.NewIoFailureError("creating output directory", err)
	}

	result := Result{}
	reporter.PhaseChanged(progress.PhaseAssembling)

	for _, f := range r.File {
		if !pathmodel.IsSafePath(f.Name) {
			logger.Warn("skipping unsafe archive entry", "name", f.Name)
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}

		dest := pathmodel.JoinHost(opts.OutputDir, f.Name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return result, pipeline.NewIoFailureError("creating directory "+f.Name, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return result, pipeline.NewIoFailureError("creating parent directory for "+f.Name, err)
		}

		if !opts.Force {
			if _, err := os.Stat(dest); err == nil {
				return result, pipeline.NewInvalidArgsError("refusing to overwrite existing file "+f.Name+" without force", nil)
			}
		}

		n, err := extractOne(f, dest)
		if err != nil {
			return result, pipeline.NewIoFailureError("extracting "+f.Name, err)
		}

		reporter.FileStarted(f.Name)
		reporter.BytesWritten(n)
		result.FilesExtracted++
		result.BytesWritten += n
	}

	reporter.Done(nil)
	return result, nil
}

func extractOne(f *zip.File, dest string) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o600)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, rc)
	if err != nil {
		return n, err
	}
	return n, os.Chtimes(dest, f.Modified, f.Modified)
}

// checkCaps enforces the three ZIP-bomb guards before any bytes are
// written: entry count, total uncompressed size, and per-entry
// compression ratio.
func checkCaps(files []*zip.File, opts Options) error {
	maxFiles := opts.MaxExtractFiles
	if maxFiles <= 0 {
		maxFiles = config.DefaultMaxExtractFiles
	}
	maxSize := opts.MaxExtractSize
	if maxSize <= 0 {
		maxSize = config.DefaultMaxExtractSize
	}
	maxRatio := opts.MaxCompressionRatio
	if maxRatio <= 0 {
		maxRatio = config.DefaultMaxCompressionRatio
	}

	if len(files) > maxFiles {
		return pipeline.NewResourceExhaustedError("archive exceeds maximum entry count", nil)
	}

	var total int64
	for _, f := range files {
		uncompressed := int64(f.UncompressedSize64)
		total += uncompressed

		compressed := int64(f.CompressedSize64)
		if compressed > 0 {
			ratio := uncompressed / compressed
			if ratio > maxRatio {
				return pipeline.NewSecurityViolationError("entry "+f.Name+" exceeds maximum compression ratio", nil)
			}
		}
	}

	if total > maxSize {
		return pipeline.NewResourceExhaustedError("archive exceeds maximum total uncompressed size", nil)
	}

	slog.Debug("extraction caps checked", "files", len(files), "total_bytes", total)
	return nil
}
