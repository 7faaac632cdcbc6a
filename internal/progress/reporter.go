// Package progress defines the Reporter interface used by the compression,
// extraction and diff pipelines to surface feedback, plus the no-op and
// plain-line implementations. The richer bubbletea-based implementation
// lives in internal/tui and satisfies the same interface.
package progress

// Phase names passed to Reporter.PhaseChanged.
const (
	PhaseCollecting  = "collecting"
	PhasePrecompress = "precompressing"
	PhaseAssembling  = "assembling"
	PhaseFinalizing  = "finalizing"
)

// Reporter receives pipeline progress events. Every method must be safe to
// call from Phase B worker goroutines and the Phase D watcher goroutine
// concurrently with the Phase C main thread.
type Reporter interface {
	// FileStarted announces that path has begun processing (pre-compression
	// or archive-write).
	FileStarted(path string)

	// BytesWritten reports incremental progress, either bytes consumed by a
	// worker or the growth of the in-progress archive since the previous
	// poll of the Phase D watcher.
	BytesWritten(n int64)

	// PhaseChanged announces a pipeline phase transition (one of the Phase*
	// constants).
	PhaseChanged(phase string)

	// Done announces pipeline completion, err non-nil on failure.
	Done(err error)
}

type noopReporter struct{}

func (noopReporter) FileStarted(string)  {}
func (noopReporter) BytesWritten(int64)  {}
func (noopReporter) PhaseChanged(string) {}
func (noopReporter) Done(error)          {}

// Noop returns a Reporter that discards every event, used when progress
// output is suppressed (-q).
func Noop() Reporter { return noopReporter{} }
