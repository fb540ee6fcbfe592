package worker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/superfeelapi/goRaphael/business/listen"
	"github.com/superfeelapi/goRaphael/business/policy"
	"github.com/superfeelapi/goRaphael/foundation/bounded"
	"github.com/superfeelapi/goRaphael/foundation/metrics"
	"github.com/superfeelapi/goRaphael/foundation/state"
)

const (
	GreetingMessage     = "Hi, I am Raphael. How was your day?"
	ClarifyMessage      = "I'm sorry, I couldn't understand what you said. Could you please repeat that?"
	UnavailableMessage  = "My speech recognition service is currently unavailable. Please check your internet connection."
	CrisisMessage       = "It sounds like you are in serious distress. Please contact local emergency services or a crisis hotline immediately."
	UnclearReplyMessage = "I apologize, I didn't get a clear response for that request."

	ExpressionThinking = "thinking"

	ThinkingStatus = "Raphael is thinking..."
	TimedOutStatus = "Processing timed out! Please speak now."
	SafetyStatus   = "Safety Protocol Activated"
)

func (w *Worker) conversationOperation() {
	w.logger.Infow("worker: conversationOperation: G started")
	defer w.logger.Infow("worker: conversationOperation: G completed")

	defer w.state.Set(state.Idle)

	w.speak(GreetingMessage)

	for {
		select {
		case <-w.shut:
			w.logger.Infow("worker: conversationOperation: received shut signal")
			return
		default:
		}

		w.turn()
	}
}

// turn runs one listen, decide, respond cycle.
func (w *Worker) turn() {
	rec := TurnRecord{ID: uuid.NewString()}

	w.state.Set(state.Listening)
	u := w.listener.Listen(w.ctx, w.config.ListenDuration)
	if w.ctx.Err() != nil {
		return
	}

	rec.Transcript = u.Text
	w.logger.Infow("worker: conversationOperation: heard", "provenance", u.Provenance, "text", u.Text)

	switch u.Provenance {
	case listen.Unrecognized:
		rec.Outcome = OutcomeUnrecognized
		rec.Reply = ClarifyMessage
		w.speak(ClarifyMessage)

	case listen.ServiceUnavailable:
		rec.Outcome = OutcomeUnavailable
		rec.Reply = UnavailableMessage
		w.speak(UnavailableMessage)

	default:
		w.respond(u.Text, &rec)
	}

	if w.ctx.Err() != nil {
		return
	}

	rec.At = time.Now()
	metrics.Turns.WithLabelValues(string(rec.Outcome)).Inc()
	w.record(rec)
}

func (w *Worker) respond(text string, rec *TurnRecord) {
	if w.policy.IsCrisis(text) {
		w.logger.Infow("worker: conversationOperation: danger phrase detected")
		w.showFace(string(policy.Sad), SafetyStatus)

		rec.Outcome = OutcomeCrisis
		rec.Reply = CrisisMessage
		w.speak(CrisisMessage)
		return
	}

	w.state.Set(state.Thinking)
	w.showFace(ExpressionThinking, ThinkingStatus)

	result, err := w.analyzer.Analyze(w.ctx, text)
	if err != nil {
		if errors.Is(err, bounded.ErrTimeout) {
			w.logger.Errorw("worker: conversationOperation: analysis timed out", "ERROR", err)
			w.showFace(string(policy.Neutral), TimedOutStatus)
		}
		rec.Outcome = OutcomeTimedOut
		w.state.Set(state.Listening)
		return
	}

	emotion := policy.Normalize(string(result.Emotion))
	w.showFace(string(emotion), fmt.Sprintf("You sound %s", emotion))

	reaction := w.policy.Reaction(emotion)
	w.showFace(string(reaction), fmt.Sprintf("Raphael feels %s", reaction))

	reply := result.Response
	if strings.TrimSpace(reply) == "" {
		reply = UnclearReplyMessage
	}
	reply = w.policy.Prefix(emotion) + reply

	rec.Outcome = OutcomeReplied
	rec.UserEmotion = emotion
	rec.AgentEmotion = reaction
	rec.Reply = reply

	w.speak(reply)
}

// speak marks the agent as speaking and returns once the utterance has been
// played, or has failed.
func (w *Worker) speak(text string) {
	w.state.Set(state.Speaking)
	w.gate.Speak(w.ctx, text)
}
