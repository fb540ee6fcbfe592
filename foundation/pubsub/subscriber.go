package pubsub

import "sync"

type Subscriber struct {
	payload chan any
	done    chan struct{}
	once    sync.Once
}

func NewSubscriber(channelCapacity int) *Subscriber {
	s := Subscriber{done: make(chan struct{})}
	if channelCapacity > 0 {
		s.payload = make(chan any, channelCapacity)
	} else {
		s.payload = make(chan any)
	}
	return &s
}

// Signal blocks until the subscriber takes data or is closed.
func (s *Subscriber) Signal(data any) {
	select {
	case s.payload <- data:
	case <-s.done:
	}
}

func (s *Subscriber) GetChannel() <-chan any {
	return s.payload
}

// Done is closed once the subscriber stops accepting data.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) Close() {
	s.once.Do(func() { close(s.done) })
}
