package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestModel_TracksPhaseFileAndBytes(t *testing.T) {
	m := newModel()

	next, _ := m.Update(phaseChangedMsg("collecting"))
	m = next.(model)
	assert.Equal(t, "collecting", m.phase)

	next, _ = m.Update(fileStartedMsg("src/main.go"))
	m = next.(model)
	assert.Equal(t, "src/main.go", m.currentFile)

	next, _ = m.Update(bytesWrittenMsg(128))
	m = next.(model)
	next, _ = m.Update(bytesWrittenMsg(32))
	m = next.(model)
	assert.Equal(t, int64(160), m.bytes)

	assert.Contains(t, m.View(), "collecting")
	assert.Contains(t, m.View(), "src/main.go")
}

func TestModel_DoneRendersSuccessOrFailure(t *testing.T) {
	m := newModel()
	m.bytes = 42

	next, cmd := m.Update(doneMsg{})
	done := next.(model)
	assert.True(t, done.done)
	assert.NotNil(t, cmd)
	assert.Contains(t, done.View(), "done")

	next, _ = m.Update(doneMsg{err: errors.New("boom")})
	failed := next.(model)
	assert.Contains(t, failed.View(), "failed")
	assert.Contains(t, failed.View(), "boom")
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
}
