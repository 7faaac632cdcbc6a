// Package tui implements a progress.Reporter backed by a bubbletea program,
// following the model/update/view split used elsewhere in the example
// corpus. It is selected by internal/cli when stdout is a terminal and
// neither --quiet nor --verbose was given.
package tui

import (
	"fmt"
	"sync"
	"sync/atomic"

	bbprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gbzip/gbzip/internal/progress"
)

var _ progress.Reporter = (*Reporter)(nil)

type fileStartedMsg string
type bytesWrittenMsg int64
type phaseChangedMsg string
type doneMsg struct{ err error }

var (
	phaseStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// model is the bubbletea model driving the archive-build progress display.
type model struct {
	phase       string
	currentFile string
	bytes       int64
	bar         bbprogress.Model
	done        bool
	err         error
}

func newModel() model {
	return model{
		phase: "starting",
		bar:   bbprogress.New(bbprogress.WithDefaultGradient(), bbprogress.WithoutPercentage()),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileStartedMsg:
		m.currentFile = string(msg)
		return m, nil
	case bytesWrittenMsg:
		m.bytes += int64(msg)
		return m, nil
	case phaseChangedMsg:
		m.phase = string(msg)
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		if m.err != nil {
			return errStyle.Render(fmt.Sprintf("gbzip: failed: %v\n", m.err))
		}
		return okStyle.Render(fmt.Sprintf("gbzip: done, %d bytes written\n", m.bytes))
	}
	file := m.currentFile
	if file == "" {
		file = "…"
	}
	return fmt.Sprintf("%s  %s\n%s\n",
		phaseStyle.Render(m.phase),
		fileStyle.Render(file),
		m.bar.ViewAs(0))
}

// Reporter drives a bubbletea program from pipeline callbacks. Every method
// is safe to call concurrently, matching progress.Reporter's contract:
// events are forwarded to the program's message loop via Send, which is
// itself goroutine-safe.
type Reporter struct {
	program *tea.Program
	wg      sync.WaitGroup
	bytes   atomic.Int64
}

// New starts the bubbletea program on the current terminal and returns a
// Reporter bound to it. Done blocks until the program has rendered its
// final frame and exited.
func New() *Reporter {
	p := tea.NewProgram(newModel())
	r := &Reporter{program: p}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = p.Run()
	}()
	return r
}

func (r *Reporter) FileStarted(path string) {
	r.program.Send(fileStartedMsg(path))
}

func (r *Reporter) BytesWritten(n int64) {
	r.bytes.Add(n)
	r.program.Send(bytesWrittenMsg(n))
}

func (r *Reporter) PhaseChanged(phase string) {
	r.program.Send(phaseChangedMsg(phase))
}

func (r *Reporter) Done(err error) {
	r.program.Send(doneMsg{err: err})
	r.wg.Wait()
}

// TotalBytes returns the cumulative byte count reported so far.
func (r *Reporter) TotalBytes() int64 {
	return r.bytes.Load()
}
