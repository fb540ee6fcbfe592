package microphone

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 800

type Microphone struct {
	sampleRate int

	sync.Mutex
}

// New initializes portaudio. Close must be called to release it.
func New(sampleRate int) (*Microphone, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}
	return &Microphone{sampleRate: sampleRate}, nil
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

// Record captures mono PCM16LE from the default input device for d.
func (m *Microphone) Record(ctx context.Context, d time.Duration) ([]byte, error) {
	m.Lock()
	defer m.Unlock()

	buf := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	total := int(d.Seconds() * float64(m.sampleRate))
	pcm := make([]byte, 0, total*2)

	for captured := 0; captured < total; captured += len(buf) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		for _, sample := range buf {
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(sample))
		}
	}

	return pcm, nil
}

func (m *Microphone) Close() error {
	return portaudio.Terminate()
}
