// Package speaker synthesizes text and plays it on the default output device,
// returning only once playback has finished.
package speaker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	resampleQuality = 4
	playbackGrace   = 5 * time.Second
)

// Synthesizer returns MP3 audio for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Speaker struct {
	tts        Synthesizer
	sampleRate beep.SampleRate

	once    sync.Once
	initErr error
}

func New(tts Synthesizer, sampleRate int) *Speaker {
	return &Speaker{
		tts:        tts,
		sampleRate: beep.SampleRate(sampleRate),
	}
}

// Speak blocks until the synthesized audio has been played.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return s.Play(ctx, audio)
}

// Play decodes MP3 data and blocks until the device has drained it.
func (s *Speaker) Play(ctx context.Context, data []byte) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	defer streamer.Close()

	s.once.Do(func() {
		s.initErr = speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10))
	})
	if s.initErr != nil {
		return fmt.Errorf("failed to initialize speaker: %w", s.initErr)
	}

	var out beep.Streamer = streamer
	if format.SampleRate != s.sampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, s.sampleRate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(out, beep.Callback(func() {
		close(done)
	})))

	limit := format.SampleRate.D(streamer.Len()) + playbackGrace

	select {
	case <-done:
		return nil

	case <-time.After(limit):
		speaker.Clear()
		return fmt.Errorf("audio playback did not finish within %s", limit)

	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func (s *Speaker) Close() error {
	speaker.Close()
	return nil
}
