// Package compress implements C4: the four-phase pipeline that turns a
// collected FileEntry list into a finished zip archive. Phase B's worker
// pool mirrors internal/discovery/walker.go's bounded-concurrency pattern
// from the teacher, adapted to errgroup.Group.SetLimit over raw DEFLATE
// compression instead of file reads.
package compress

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"crypto/crc32"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/pipeline"
	"github.com/gbzip/gbzip/internal/platform"
	"github.com/gbzip/gbzip/internal/progress"
)

// activationThreshold is the large_file_bytes sum above which Phase B's
// worker pool is spun up at all (spec: "Activated only when
// large_file_bytes > 5 MiB").
const activationThreshold int64 = 5 << 20

// Options configures a single archive build.
type Options struct {
	OutputPath       string
	Entries          []pipeline.FileEntry
	Summary          pipeline.CollectSummary
	CompressionLevel int // flate.NoCompression..flate.BestCompression, or -1 for default
	MaxWorkers       int
	Reporter         progress.Reporter
	Comment          string
}

// Result reports what the build actually did, for --verbose output and for
// the diff engine's post-create index refresh.
type Result struct {
	FilesWritten       int
	BytesWritten       int64
	PrecompressedCount int
	StreamedCount      int
}

// Build runs Phases A-D. Phase A (collection) is assumed already done by
// the caller; Entries is its output. Build performs B, C and D.
func Build(ctx context.Context, opts Options) (Result, error) {
	entries := opts.Entries
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.Noop()
	}

	reporter.PhaseChanged(progress.PhaseCollecting)

	// At level 0 (-0, store-only) every entry is written with method 0 and
	// never DEFLATEd, so pre-deflating into PrecompressedPayload would be
	// wasted work.
	if opts.CompressionLevel != 0 && opts.Summary.LargeFileBytes > activationThreshold {
		reporter.PhaseChanged(progress.PhasePrecompress)
		if err := precompress(ctx, entries, opts.CompressionLevel, opts.MaxWorkers, reporter); err != nil {
			reporter.Done(err)
			return Result{}, err
		}
	}

	reporter.PhaseChanged(progress.PhaseAssembling)
	result, err := assemble(ctx, opts, entries, reporter)
	reporter.Done(err)
	return result, err
}

// precompress is Phase B: a bounded worker pool that pre-deflates every
// large FileEntry's source file into its PrecompressedPayload. Individual
// failures are recorded as CompressionOK=false, never fatal.
func precompress(ctx context.Context, entries []pipeline.FileEntry, level, maxWorkers int, reporter progress.Reporter) error {
	n := maxWorkers
	if n <= 0 {
		n = platform.HardwareParallelism()
	}
	if n < 1 {
		n = 1
	}
	if n > 16 {
		n = 16
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)

	logger := config.NewLogger("compress")

	for i := range entries {
		e := &entries[i] // capture loop variable via index, entries stays shared
		if e.IsDirectory || e.Size < config.DefaultLargeFileThreshold {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			reporter.FileStarted(e.ArchivePath)
			payload, crc, err := deflateFile(e.SourcePath, level)
			if err != nil {
				logger.Debug("pre-compression failed, will stream", "path", e.SourcePath, "error", err)
				e.CompressionOK = false
				return nil
			}
			e.PrecompressedPayload = payload
			e.CRC32 = crc
			e.CompressionOK = true
			reporter.BytesWritten(e.Size)
			return nil
		})
	}

	return g.Wait()
}

func deflateFile(path string, level int) ([]byte, uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	hasher := crc32.NewIEEE()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, normalizeLevel(level))
	if err != nil {
		return nil, 0, err
	}

	if _, err := io.Copy(io.MultiWriter(w, hasher), f); err != nil {
		return nil, 0, err
	}
	if err := w.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), hasher.Sum32(), nil
}

func normalizeLevel(level int) int {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return flate.DefaultCompression
	}
	return level
}

// assemble is Phase C and D: single-threaded archive writing, using
// CreateRaw for entries whose pre-compression succeeded and streaming
// through zip.Writer.Create otherwise, followed by a watched Close.
func assemble(ctx context.Context, opts Options, entries []pipeline.FileEntry, reporter progress.Reporter) (Result, error) {
	tmpPath := opts.OutputPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return Result{}, pipeline.NewIoFailureError("creating archive", err)
	}

	zw := zip.NewWriter(f)
	level := normalizeLevel(opts.CompressionLevel)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	// spec.md §6: "stored (method 0) when compression_level = 0" — -0
	// writes every member uncompressed regardless of pre-compression state.
	method := uint16(zip.Deflate)
	if opts.CompressionLevel == 0 {
		method = zip.Store
	}

	result := Result{}

	discard := func(cause error) (Result, error) {
		zw.Close()
		f.Close()
		os.Remove(tmpPath)
		return Result{}, cause
	}

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return discard(pipeline.NewInterruptedError("archive build canceled", ctx.Err()))
		default:
		}

		if e.IsDirectory {
			hdr := &zip.FileHeader{Name: e.ArchivePath, Modified: time.Unix(e.Mtime, 0)}
			hdr.SetMode(0o755 | os.ModeDir)
			if _, err := zw.CreateHeader(hdr); err != nil {
				return discard(pipeline.NewArchiveWriteFailureError("writing directory entry "+e.ArchivePath, err))
			}
			continue
		}

		if method == zip.Deflate && e.CompressionOK && e.PrecompressedPayload != nil {
			hdr := &zip.FileHeader{
				Name:               e.ArchivePath,
				Method:             zip.Deflate,
				Modified:           time.Unix(e.Mtime, 0),
				CRC32:              e.CRC32,
				UncompressedSize64: uint64(e.Size),
				CompressedSize64:   uint64(len(e.PrecompressedPayload)),
			}
			w, err := zw.CreateRaw(hdr)
			if err != nil {
				return discard(pipeline.NewArchiveWriteFailureError("writing raw entry "+e.ArchivePath, err))
			}
			if _, err := w.Write(e.PrecompressedPayload); err != nil {
				return discard(pipeline.NewArchiveWriteFailureError("writing raw entry "+e.ArchivePath, err))
			}
			result.PrecompressedCount++
		} else {
			if err := streamEntry(zw, e, method); err != nil {
				return discard(pipeline.NewArchiveWriteFailureError("streaming entry "+e.ArchivePath, err))
			}
			result.StreamedCount++
		}

		result.FilesWritten++
		result.BytesWritten += e.Size
		reporter.BytesWritten(e.Size)
	}

	if opts.Comment != "" {
		if err := zw.SetComment(opts.Comment); err != nil {
			return discard(pipeline.NewArchiveWriteFailureError("setting archive comment", err))
		}
	}

	reporter.PhaseChanged(progress.PhaseFinalizing)
	watcherDone := make(chan struct{})
	stopWatcher := make(chan struct{})
	go watchFileSize(tmpPath, reporter, stopWatcher, watcherDone)

	closeErr := zw.Close()
	closeFileErr := f.Close()
	close(stopWatcher)
	<-watcherDone

	if closeErr != nil || closeFileErr != nil {
		os.Remove(tmpPath)
		if closeErr != nil {
			return Result{}, pipeline.NewArchiveWriteFailureError("finalizing archive", closeErr)
		}
		return Result{}, pipeline.NewArchiveWriteFailureError("finalizing archive", closeFileErr)
	}

	if err := os.Rename(tmpPath, opts.OutputPath); err != nil {
		os.Remove(tmpPath)
		return Result{}, pipeline.NewIoFailureError("renaming archive into place", err)
	}

	return result, nil
}

func streamEntry(zw *zip.Writer, e pipeline.FileEntry, method uint16) error {
	src, err := os.Open(e.SourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	hdr := &zip.FileHeader{
		Name:     e.ArchivePath,
		Method:   method,
		Modified: time.Unix(e.Mtime, 0),
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

// watchFileSize polls the in-progress archive's size at 1 Hz and reports
// its growth since the previous poll, driving progress feedback for the
// Phase D close, which may block for a long time while the archive
// library performs its central-directory write.
func watchFileSize(path string, reporter progress.Reporter, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var last int64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if info, err := os.Stat(path); err == nil {
				if size := info.Size(); size > last {
					reporter.BytesWritten(size - last)
					last = size
				}
			} else {
				slog.Debug("finalize watcher stat failed", "path", path, "error", err)
			}
		}
	}
}
