// Package analysis asks the language model for an empathetic reply and the
// user's emotion, and turns whatever comes back into a usable Result.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/superfeelapi/goRaphael/business/policy"
	"github.com/superfeelapi/goRaphael/foundation/bounded"
	"github.com/superfeelapi/goRaphael/foundation/metrics"
	"go.uber.org/zap"
)

// DegradedReply is spoken when the analysis call fails outright.
const DegradedReply = "Sorry, I had trouble understanding that."

// DefaultDeadline bounds a single analysis round trip.
const DefaultDeadline = 5 * time.Second

// abandonFactor caps how long an abandoned call may keep running, as a
// multiple of the deadline.
const abandonFactor = 2

// Brain is a language model client that keeps its own conversation history.
type Brain interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of analysing one utterance.
type Result struct {
	Emotion  policy.Emotion
	Response string
}

// Degraded is the result used when analysis failed.
func Degraded(error) Result {
	return Result{Emotion: policy.Neutral, Response: DegradedReply}
}

// Prompt builds the instruction sent to the model. The parser depends on the
// two-field JSON shape requested here.
func Prompt(text string) string {
	return fmt.Sprintf(`You are Raphael, a helpful and emotionally intelligent AI assistant.

Analyze the user's message below and do TWO things in your response:
1. Provide a natural, empathetic, and factual reply to the user.
2. Identify the primary emotion expressed by the user as one of:
   happy, sad, angry, surprised, fearful, or neutral.

Respond strictly in this JSON format:
{
    "response": "<your reply here>",
    "emotion": "<one of: happy, sad, angry, surprised, fearful, neutral>"
}

User says: "%s"`, text)
}

type Analyzer struct {
	brain       Brain
	task        bounded.Task[Result]
	callTimeout time.Duration
	logger      *zap.SugaredLogger
}

func NewAnalyzer(brain Brain, deadline time.Duration, logger *zap.SugaredLogger) *Analyzer {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Analyzer{
		brain: brain,
		task: bounded.Task[Result]{
			Deadline: deadline,
			Fallback: Degraded,
		},
		callTimeout: abandonFactor * deadline,
		logger:      logger,
	}
}

// WithClock replaces the deadline clock, for tests.
func (a *Analyzer) WithClock(c bounded.Clock) *Analyzer {
	a.task.Clock = c
	return a
}

// Analyze returns bounded.ErrTimeout when the model did not answer in time.
// Any other failure is absorbed into the degraded result.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.AnalysisLatency.Observe(time.Since(start).Seconds())
	}()

	return a.task.Run(ctx, func(ctx context.Context) (Result, error) {
		ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
		defer cancel()

		raw, err := a.brain.Ask(ctx, Prompt(text))
		if err != nil {
			a.logger.Errorw("analysis: Analyze", "ERROR", err)
			return Result{}, err
		}

		r := Parse(raw)
		a.logger.Infow("analysis: Analyze", "emotion", r.Emotion, "response", r.Response)
		return r, nil
	})
}
