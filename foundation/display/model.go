package display

import (
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/superfeelapi/goRaphael/foundation/state"
)

const (
	blinkInterval = 600 * time.Millisecond
	waveInterval  = 50 * time.Millisecond

	thinking = "thinking"
)

var faces = map[string]string{
	"happy":     "😊",
	"sad":       "😢",
	"neutral":   "😐",
	"thinking":  "🤔",
	"angry":     "😡",
	"surprised": "😮",
	"fearful":   "😨",
}

var blinkFrames = []string{"🤔", "😐"}

// Face returns the emoji for expression, neutral when unknown.
func Face(expression string) string {
	if f, ok := faces[expression]; ok {
		return f
	}
	return faces["neutral"]
}

// =====================================================================================================================

// FaceMsg changes the displayed expression and status line.
type FaceMsg struct {
	Expression string
	Status     string
}

// PhaseMsg changes the activity waveform.
type PhaseMsg struct {
	Phase state.Phase
}

type blinkMsg struct {
	generation int
}

type waveMsg struct{}

// =====================================================================================================================

type Styles struct {
	Title  lipgloss.Style
	Face   lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
	Waves  map[state.Phase]lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5F5F5")).Background(lipgloss.Color("#5A4FCF")).Padding(0, 1),
		Face:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 4).Margin(1, 0),
		Status: lipgloss.NewStyle().Italic(true),
		Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Waves: map[state.Phase]lipgloss.Style{
			state.Idle:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			state.Listening: lipgloss.NewStyle().Foreground(lipgloss.Color("#8E44AD")),
			state.Thinking:  lipgloss.NewStyle().Foreground(lipgloss.Color("#27AE60")),
			state.Speaking:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2E86DE")),
		},
	}
}

// Model is the bubbletea model for the face and activity panel.
type Model struct {
	expression string
	status     string
	face       string

	// generation invalidates blink ticks from an earlier thinking spell.
	generation int
	frame      int

	phase  state.Phase
	offset float64
	rng    *rand.Rand

	styles Styles
}

func NewModel() Model {
	return Model{
		expression: "neutral",
		status:     "Waiting...",
		face:       Face("neutral"),
		phase:      state.Idle,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		styles:     DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return waveTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case FaceMsg:
		wasThinking := m.expression == thinking
		m.expression = msg.Expression
		m.status = msg.Status

		if msg.Expression != thinking {
			m.face = Face(msg.Expression)
			return m, nil
		}
		if wasThinking {
			return m, nil
		}
		m.generation++
		m.frame = 0
		m.face = blinkFrames[0]
		return m, blinkTick(m.generation)

	case blinkMsg:
		if m.expression != thinking || msg.generation != m.generation {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(blinkFrames)
		m.face = blinkFrames[m.frame]
		return m, blinkTick(m.generation)

	case PhaseMsg:
		m.phase = msg.Phase

	case waveMsg:
		m.offset += waveStep
		return m, waveTick()
	}

	return m, nil
}

func (m Model) View() string {
	style, ok := m.styles.Waves[m.phase]
	if !ok {
		style = m.styles.Waves[state.Idle]
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.Title.Render("Raphael"),
		m.styles.Face.Render(m.face),
		m.styles.Status.Render(m.status),
		"",
		style.Render(Wave(m.phase, m.offset, waveWidth, m.rng)),
		style.Render("state: "+m.phase.String()),
		"",
		m.styles.Help.Render("q: quit"),
	)
}

func blinkTick(generation int) tea.Cmd {
	return tea.Tick(blinkInterval, func(time.Time) tea.Msg {
		return blinkMsg{generation: generation}
	})
}

func waveTick() tea.Cmd {
	return tea.Tick(waveInterval, func(time.Time) tea.Msg {
		return waveMsg{}
	})
}
