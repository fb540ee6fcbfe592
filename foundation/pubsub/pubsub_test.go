package pubsub_test

import (
	"sync"
	"testing"
	"time"

	"github.com/superfeelapi/goRaphael/foundation/pubsub"
)

func TestBroker(t *testing.T) {
	b := pubsub.NewBroker()
	s1 := pubsub.NewSubscriber(4)
	s2 := pubsub.NewSubscriber(4)
	s3 := pubsub.NewSubscriber(4)

	b.Subscribe("phase", s1)
	b.Subscribe("phase", s2)
	b.Subscribe("emotion", s3)

	for _, v := range []string{"listening", "thinking", "speaking"} {
		if err := b.Publish("phase", v); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Publish("emotion", "sad"); err != nil {
		t.Fatal(err)
	}

	for i, s := range []*pubsub.Subscriber{s1, s2} {
		for _, want := range []string{"listening", "thinking", "speaking"} {
			select {
			case got := <-s.GetChannel():
				if got != want {
					t.Fatalf("subscriber %d: got %v, want %s", i+1, got, want)
				}
			case <-time.After(time.Second):
				t.Fatalf("subscriber %d: missing %s", i+1, want)
			}
		}
	}

	select {
	case got := <-s3.GetChannel():
		if got != "sad" {
			t.Fatalf("got %v, want sad", got)
		}
	case <-time.After(time.Second):
		t.Fatal("emotion subscriber got nothing")
	}

	select {
	case extra := <-s3.GetChannel():
		t.Fatalf("emotion subscriber received phase data %v", extra)
	default:
	}
}

func TestBroker_UnknownTopic(t *testing.T) {
	t.Parallel()
	b := pubsub.NewBroker()
	if err := b.Publish("nobody", 1); err == nil {
		t.Fatal("expected error for a topic without subscribers")
	}
}

func TestBroker_UnSubscribeReleasesBlockedPublisher(t *testing.T) {
	t.Parallel()
	b := pubsub.NewBroker()
	s := pubsub.NewSubscriber(0)
	b.Subscribe("phase", s)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Publish("phase", "idle")
	}()

	time.Sleep(20 * time.Millisecond)
	if err := b.UnSubscribe("phase", s); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher still blocked after unsubscribe")
	}
}
