// Package speechgate serializes access to the speech synthesizer so that only
// one utterance is ever played at a time.
package speechgate

import (
	"context"
	"fmt"
	"sync"

	"github.com/superfeelapi/goRaphael/foundation/metrics"
	"go.uber.org/zap"
)

// Synthesizer turns text into audible output, blocking until playback ends.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

type Gate struct {
	mu     sync.Mutex
	synth  Synthesizer
	logger *zap.SugaredLogger
}

func New(synth Synthesizer, logger *zap.SugaredLogger) *Gate {
	return &Gate{
		synth:  synth,
		logger: logger,
	}
}

// Speak blocks until text has been fully played or the synthesizer failed.
// A caller arriving while another utterance is in flight waits for the gate.
// Synthesis errors are logged and never returned; the gate is always released.
func (g *Gate) Speak(ctx context.Context, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	done := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("synthesizer panic: %v", r)
			}
		}()
		done <- g.synth.Speak(ctx, text)
	}()

	if err := <-done; err != nil {
		metrics.SpeechFailures.Inc()
		g.logger.Errorw("speechgate: Speak", "ERROR", err, "text", text)
		return
	}
	g.logger.Infow("speechgate: Speak: completed", "text", text)
}
