package progress

import (
	"log/slog"
	"sync/atomic"
)

// LineReporter is a plain slog-backed Reporter used under --verbose, or
// whenever stdout isn't a terminal.
type LineReporter struct {
	logger *slog.Logger
	bytes  atomic.Int64
}

// NewLineReporter builds a LineReporter that logs through logger.
func NewLineReporter(logger *slog.Logger) *LineReporter {
	return &LineReporter{logger: logger}
}

func (l *LineReporter) FileStarted(path string) {
	l.logger.Info("processing", "path", path)
}

func (l *LineReporter) BytesWritten(n int64) {
	l.bytes.Add(n)
}

func (l *LineReporter) PhaseChanged(phase string) {
	l.logger.Info("phase", "phase", phase)
}

func (l *LineReporter) Done(err error) {
	if err != nil {
		l.logger.Error("done", "error", err, "bytes", l.bytes.Load())
		return
	}
	l.logger.Info("done", "bytes", l.bytes.Load())
}
