// Package display renders the agent's face, status line and activity
// waveform, either in the terminal or as log lines.
package display

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/superfeelapi/goRaphael/foundation/state"
	"go.uber.org/zap"
)

// TUI is the terminal face. It is safe to update from any goroutine.
type TUI struct {
	program *tea.Program
}

func New() *TUI {
	return &TUI{
		program: tea.NewProgram(NewModel(), tea.WithAltScreen()),
	}
}

// Run blocks until the user quits or ctx is cancelled.
func (t *TUI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		t.program.Quit()
	}()

	if _, err := t.program.Run(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}

func (t *TUI) UpdateFace(expression string, status string) {
	t.program.Send(FaceMsg{Expression: expression, Status: status})
}

func (t *TUI) OnPhaseChanged(phase state.Phase) {
	t.program.Send(PhaseMsg{Phase: phase})
}

// =====================================================================================================================

// Log is the headless display: every update becomes a log line.
type Log struct {
	logger *zap.SugaredLogger
}

func NewLog(logger *zap.SugaredLogger) *Log {
	return &Log{logger: logger}
}

func (l *Log) UpdateFace(expression string, status string) {
	l.logger.Infow("display: face", "expression", expression, "face", Face(expression), "status", status)
}

func (l *Log) OnPhaseChanged(phase state.Phase) {
	l.logger.Infow("display: phase", "phase", phase.String())
}
