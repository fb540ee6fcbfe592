package worker

import (
	"context"
	"time"

	"github.com/superfeelapi/goRaphael/business/analysis"
	"github.com/superfeelapi/goRaphael/business/listen"
	"github.com/superfeelapi/goRaphael/business/policy"
	"github.com/superfeelapi/goRaphael/foundation/speechgate"
	"github.com/superfeelapi/goRaphael/foundation/state"
	"go.uber.org/zap"
)

type Settings struct {
	Config
	Logger      *zap.SugaredLogger
	Listener    Listener
	Analyzer    Analyzer
	Synthesizer speechgate.Synthesizer
	Policy      *policy.Table
	Face        FaceRenderer
	Visualizers []Visualizer
	Journal     Journal
}

type Config struct {
	ListenDuration   time.Duration
	ObserverInterval time.Duration
}

// =====================================================================================================================

// Listener records and transcribes one fixed-length utterance.
type Listener interface {
	Listen(ctx context.Context, d time.Duration) listen.Utterance
}

// Analyzer produces a reply and the user's emotion, or bounded.ErrTimeout.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Result, error)
}

// FaceRenderer shows an expression and a status line.
type FaceRenderer interface {
	UpdateFace(expression string, status string)
}

// Visualizer reacts to phase changes.
type Visualizer interface {
	OnPhaseChanged(phase state.Phase)
}

// Journal records finished turns somewhere outside the process.
type Journal interface {
	Produce(ctx context.Context, data any) error
}

// =====================================================================================================================

type Outcome string

const (
	OutcomeReplied      Outcome = "replied"
	OutcomeCrisis       Outcome = "crisis"
	OutcomeTimedOut     Outcome = "timed_out"
	OutcomeUnrecognized Outcome = "unrecognized"
	OutcomeUnavailable  Outcome = "service_unavailable"
)

// TurnRecord is what the journal receives for every turn.
type TurnRecord struct {
	ID           string         `json:"id"`
	Outcome      Outcome        `json:"outcome"`
	Transcript   string         `json:"transcript,omitempty"`
	UserEmotion  policy.Emotion `json:"user_emotion,omitempty"`
	AgentEmotion policy.Emotion `json:"agent_emotion,omitempty"`
	Reply        string         `json:"reply,omitempty"`
	At           time.Time      `json:"at"`
}

type faceUpdate struct {
	expression string
	status     string
}
