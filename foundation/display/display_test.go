package display

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/superfeelapi/goRaphael/foundation/state"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestFace(t *testing.T) {
	tests := map[string]string{
		"happy":    "😊",
		"sad":      "😢",
		"thinking": "🤔",
		"fearful":  "😨",
		"bored":    "😐",
		"":         "😐",
	}
	for expression, want := range tests {
		if got := Face(expression); got != want {
			t.Errorf("Face(%q) = %s, want %s", expression, got, want)
		}
	}
}

func TestModel_FaceUpdates(t *testing.T) {
	m := NewModel()

	m, cmd := update(t, m, FaceMsg{Expression: "sad", Status: "You sound sad"})
	if cmd != nil {
		t.Fatal("plain expression should not schedule a blink")
	}
	if !strings.Contains(m.View(), "😢") || !strings.Contains(m.View(), "You sound sad") {
		t.Fatalf("view missing face or status:\n%s", m.View())
	}

	m, cmd = update(t, m, FaceMsg{Expression: thinking, Status: "Raphael is thinking..."})
	if cmd == nil {
		t.Fatal("thinking should start the blink")
	}
	gen := m.generation

	m, _ = update(t, m, blinkMsg{generation: gen})
	if m.face != "😐" {
		t.Fatalf("after one blink face = %s, want 😐", m.face)
	}
	m, _ = update(t, m, blinkMsg{generation: gen})
	if m.face != "🤔" {
		t.Fatalf("after two blinks face = %s, want 🤔", m.face)
	}

	// A second thinking update while already thinking keeps the same animation.
	m, cmd = update(t, m, FaceMsg{Expression: thinking, Status: "still"})
	if cmd != nil || m.generation != gen {
		t.Fatal("repeated thinking restarted the blink")
	}

	m, _ = update(t, m, FaceMsg{Expression: "happy", Status: "Raphael feels happy"})
	if m.face != "😊" {
		t.Fatalf("face = %s, want 😊", m.face)
	}

	// A blink scheduled before leaving thinking is ignored.
	m, cmd = update(t, m, blinkMsg{generation: gen})
	if cmd != nil || m.face != "😊" {
		t.Fatal("stale blink changed the face")
	}
}

func TestModel_PhaseAndQuit(t *testing.T) {
	m := NewModel()

	m, _ = update(t, m, PhaseMsg{Phase: state.Thinking})
	if !strings.Contains(m.View(), "state: thinking") {
		t.Fatalf("view missing phase:\n%s", m.View())
	}

	m, cmd := update(t, m, waveMsg{})
	if cmd == nil || m.offset != waveStep {
		t.Fatal("wave tick did not advance")
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not produce a quit message")
	}
}

func TestWave(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, p := range []state.Phase{state.Idle, state.Listening, state.Thinking, state.Speaking} {
		w := Wave(p, 0, waveWidth, rng)
		if n := utf8.RuneCountInString(w); n != waveWidth {
			t.Fatalf("%s wave has %d samples, want %d", p, n, waveWidth)
		}
	}

	// Without noise the thinking pattern swings wider than idle.
	peak := func(p state.Phase) float64 {
		var max float64
		for i := 0; i < 200; i++ {
			v := Sample(p, float64(i)*0.05, nil)
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
		return max
	}
	if peak(state.Thinking) <= peak(state.Idle) {
		t.Fatal("thinking should be more active than idle")
	}
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLog(zap.New(core).Sugar())

	l.UpdateFace("sad", "Safety Protocol Activated")
	l.OnPhaseChanged(state.Speaking)

	if n := logs.FilterMessage("display: face").Len(); n != 1 {
		t.Fatalf("face logged %d times, want 1", n)
	}
	if n := logs.FilterField(zap.String("phase", "speaking")).Len(); n != 1 {
		t.Fatalf("phase logged %d times, want 1", n)
	}
}
