package pubsub

import (
	"fmt"
	"sync"
	"time"
)

const (
	topicWait = 3 * time.Second
	topicPoll = 100 * time.Millisecond
)

type Broker struct {
	topics map[string][]*Subscriber
	sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string][]*Subscriber, 0),
	}
}

// Publish delivers data to every subscriber of topic, in subscription order.
// A topic nobody has subscribed to yet is retried for a short while before
// Publish gives up with an error.
func (b *Broker) Publish(topic string, data any) error {
	deadline := time.Now().Add(topicWait)

	for {
		b.RLock()
		subs, exists := b.topics[topic]
		subs = append([]*Subscriber(nil), subs...)
		b.RUnlock()

		if exists {
			for _, sub := range subs {
				sub.Signal(data)
			}
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("topic[%s] does not exist", topic)
		}
		time.Sleep(topicPoll)
	}
}

func (b *Broker) Subscribe(topic string, s *Subscriber) {
	b.Lock()
	defer b.Unlock()
	{
		_, exists := b.topics[topic]
		if !exists {
			b.topics[topic] = make([]*Subscriber, 0)
		}

		b.topics[topic] = append(b.topics[topic], s)
	}
}

func (b *Broker) UnSubscribe(topic string, s *Subscriber) error {
	// Release a publisher that may be blocked on this subscriber before
	// taking the write lock.
	s.Close()

	b.Lock()
	defer b.Unlock()
	{
		subs, exists := b.topics[topic]
		if !exists {
			return fmt.Errorf("topic[%s] does not exists", topic)
		}

		b.topics[topic] = removeFromSlice(subs, s)
	}

	return nil
}

// =================================================================================================================

func removeFromSlice[T comparable](s []T, d T) []T {
	for i := range s {
		if s[i] == d {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}
