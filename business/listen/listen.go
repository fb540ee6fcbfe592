// Package listen records a fixed-length clip and transcribes it, folding every
// failure into a provenance tag instead of an error.
package listen

import (
	"context"
	"strings"
	"time"

	"github.com/superfeelapi/goRaphael/foundation/metrics"
	"go.uber.org/zap"
)

// Provenance tells the conversation loop whether a transcript is usable.
type Provenance string

const (
	Recognized         Provenance = "recognized"
	Unrecognized       Provenance = "unrecognized"
	ServiceUnavailable Provenance = "service-unavailable"
)

// Utterance is one listen step's outcome. It is consumed immediately.
type Utterance struct {
	Text       string
	Provenance Provenance
}

// Recorder captures PCM16LE mono audio for the given duration.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) ([]byte, error)
}

// Transcriber converts recorded audio to text. An empty transcript with a nil
// error means the audio held nothing intelligible.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte) (string, error)
}

type Listener struct {
	recorder    Recorder
	transcriber Transcriber
	logger      *zap.SugaredLogger
}

func New(r Recorder, t Transcriber, logger *zap.SugaredLogger) *Listener {
	return &Listener{
		recorder:    r,
		transcriber: t,
		logger:      logger,
	}
}

// Listen never fails. Device or service errors surface as ServiceUnavailable,
// empty or unintelligible audio as Unrecognized.
func (l *Listener) Listen(ctx context.Context, d time.Duration) Utterance {
	u := l.listen(ctx, d)
	metrics.Utterances.WithLabelValues(string(u.Provenance)).Inc()
	return u
}

func (l *Listener) listen(ctx context.Context, d time.Duration) Utterance {
	pcm, err := l.recorder.Record(ctx, d)
	if err != nil {
		l.logger.Errorw("listen: Record", "ERROR", err)
		return Utterance{Provenance: ServiceUnavailable}
	}

	text, err := l.transcriber.Transcribe(ctx, pcm)
	if err != nil {
		l.logger.Errorw("listen: Transcribe", "ERROR", err)
		return Utterance{Provenance: ServiceUnavailable}
	}

	u := Classify(text)
	l.logger.Infow("listen: Listen", "provenance", u.Provenance, "text", u.Text)
	return u
}

// Classify tags a transcript, treating whitespace-only text as unrecognized.
func Classify(text string) Utterance {
	text = strings.TrimSpace(text)
	if text == "" {
		return Utterance{Provenance: Unrecognized}
	}
	return Utterance{Text: text, Provenance: Recognized}
}
