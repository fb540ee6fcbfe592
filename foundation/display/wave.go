package display

import (
	"math"
	"math/rand"
	"strings"

	"github.com/superfeelapi/goRaphael/foundation/state"
)

const (
	waveWidth = 60
	waveSpan  = 10.0
	waveStep  = 0.1
	waveLimit = 2.0
)

var levels = []rune("▁▂▃▄▅▆▇█")

type component struct {
	amplitude float64
	frequency float64
}

type pattern struct {
	components []component
	noise      float64
}

var patterns = map[state.Phase]pattern{
	state.Idle: {
		components: []component{{0.1, 0.3}},
		noise:      0.05,
	},
	state.Listening: {
		components: []component{{0.35, 1.0}, {0.25, 2.0}, {0.15, 3.0}},
		noise:      0.08,
	},
	state.Thinking: {
		components: []component{{0.8, 1.2}, {0.6, 2.3}, {0.4, 3.5}},
		noise:      0.3,
	},
	state.Speaking: {
		components: []component{{0.5, 0.8}, {0.2, 1.5}},
		noise:      0.1,
	},
}

// Sample returns the activity level for phase at time t.
func Sample(phase state.Phase, t float64, rng *rand.Rand) float64 {
	p, ok := patterns[phase]
	if !ok {
		p = patterns[state.Idle]
	}

	var v float64
	for _, c := range p.components {
		v += c.amplitude * math.Sin(2*math.Pi*c.frequency*t)
	}
	if rng != nil {
		v += p.noise * rng.NormFloat64()
	}
	return v
}

// Wave renders width samples starting at offset as a single line of blocks.
func Wave(phase state.Phase, offset float64, width int, rng *rand.Rand) string {
	var b strings.Builder
	for i := 0; i < width; i++ {
		t := offset + waveSpan*float64(i)/float64(width)
		b.WriteRune(level(Sample(phase, t, rng)))
	}
	return b.String()
}

func level(v float64) rune {
	if v < -waveLimit {
		v = -waveLimit
	}
	if v > waveLimit {
		v = waveLimit
	}
	idx := int((v + waveLimit) / (2 * waveLimit) * float64(len(levels)-1))
	return levels[idx]
}
