package state

import "go.uber.org/atomic"

// Phase is the stage of a conversational turn.
type Phase int32

const (
	Idle Phase = iota
	Listening
	Thinking
	Speaking
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Thinking:
		return "thinking"
	case Speaking:
		return "speaking"
	}
	return "unknown"
}

// State holds the current conversational phase. It is written by the
// conversation loop and read by observers on other goroutines.
type State struct {
	phase atomic.Int32
}

func NewState() *State {
	s := State{}
	s.phase.Store(int32(Idle))
	return &s
}

func (s *State) Get() Phase {
	return Phase(s.phase.Load())
}

func (s *State) Set(p Phase) {
	s.phase.Store(int32(p))
}
