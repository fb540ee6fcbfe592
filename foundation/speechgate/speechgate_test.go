package speechgate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/superfeelapi/goRaphael/foundation/speechgate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type span struct {
	text       string
	start, end time.Time
}

type recordingSynth struct {
	mu     sync.Mutex
	active int
	max    int
	spans  []span
	hold   time.Duration
}

func (r *recordingSynth) Speak(ctx context.Context, text string) error {
	r.mu.Lock()
	r.active++
	if r.active > r.max {
		r.max = r.active
	}
	start := time.Now()
	r.mu.Unlock()

	time.Sleep(r.hold)

	r.mu.Lock()
	r.active--
	r.spans = append(r.spans, span{text: text, start: start, end: time.Now()})
	r.mu.Unlock()
	return nil
}

func TestGate_SerializesConcurrentCallers(t *testing.T) {
	synth := &recordingSynth{hold: 30 * time.Millisecond}
	gate := speechgate.New(synth, zaptest.NewLogger(t).Sugar())

	var wg sync.WaitGroup
	for _, text := range []string{"first", "second", "third"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			gate.Speak(context.Background(), text)
		}(text)
	}
	wg.Wait()

	if synth.max != 1 {
		t.Fatalf("max concurrent synthesis = %d, want 1", synth.max)
	}
	if len(synth.spans) != 3 {
		t.Fatalf("spoke %d utterances, want 3", len(synth.spans))
	}
	for i := 1; i < len(synth.spans); i++ {
		prev, cur := synth.spans[i-1], synth.spans[i]
		if cur.start.Before(prev.end) {
			t.Fatalf("%q started before %q finished", cur.text, prev.text)
		}
	}
}

func TestGate_BlocksUntilPlaybackCompletes(t *testing.T) {
	synth := &recordingSynth{hold: 40 * time.Millisecond}
	gate := speechgate.New(synth, zaptest.NewLogger(t).Sugar())

	start := time.Now()
	gate.Speak(context.Background(), "hello")

	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("Speak returned after %s, before playback finished", elapsed)
	}
	if len(synth.spans) != 1 {
		t.Fatalf("spoke %d utterances, want 1", len(synth.spans))
	}
}

type synthFunc func(ctx context.Context, text string) error

func (f synthFunc) Speak(ctx context.Context, text string) error { return f(ctx, text) }

func TestGate_ReleasesOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		synth synthFunc
	}{
		{
			name: "error",
			synth: func(ctx context.Context, text string) error {
				return errors.New("audio device lost")
			},
		},
		{
			name: "panic",
			synth: func(ctx context.Context, text string) error {
				panic("engine crashed")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			core, logs := observer.New(zapcore.InfoLevel)
			gate := speechgate.New(tt.synth, zap.New(core).Sugar())

			done := make(chan struct{})
			go func() {
				gate.Speak(context.Background(), "one")
				gate.Speak(context.Background(), "two")
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("gate was not released after a failed synthesis")
			}

			if n := logs.FilterMessage("speechgate: Speak").Len(); n != 2 {
				t.Fatalf("logged %d synthesis errors, want 2", n)
			}
		})
	}
}
