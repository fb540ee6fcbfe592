// Package bounded runs a unit of work on its own goroutine and gives up on it
// after a fixed deadline.
//
// Abandonment is soft: the work is never interrupted, it runs to completion in
// the background and its result is discarded. Callers that need the work to
// stop must arrange that themselves through the context they hand it.
package bounded

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned by Run when the work did not finish before the deadline.
var ErrTimeout = errors.New("bounded: deadline exceeded")

// Clock abstracts the timer so deadlines can be driven by tests.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is backed by the time package.
var RealClock Clock = realClock{}

// Task describes how long to wait and how to degrade when the work fails.
type Task[T any] struct {
	Deadline time.Duration

	// Fallback converts a work error (or recovered panic) into a usable
	// result. When nil the zero value of T is returned.
	Fallback func(err error) T

	// Clock defaults to RealClock.
	Clock Clock
}

type outcome[T any] struct {
	value T
	err   error
}

// Run dispatches work immediately and waits up to the deadline. It returns
// ErrTimeout when the deadline passes first, otherwise the work's value, or
// the fallback value when the work returned an error or panicked. A cancelled
// ctx is reported as ctx.Err().
func (t Task[T]) Run(ctx context.Context, work func(ctx context.Context) (T, error)) (T, error) {
	clock := t.Clock
	if clock == nil {
		clock = RealClock
	}

	// Buffered so an abandoned goroutine can always deliver and exit.
	result := make(chan outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- outcome[T]{err: fmt.Errorf("bounded: work panic: %v", r)}
			}
		}()
		v, err := work(ctx)
		result <- outcome[T]{value: v, err: err}
	}()

	timer := clock.After(t.Deadline)

	select {
	case out := <-result:
		if out.err != nil {
			return t.fallback(out.err), nil
		}
		return out.value, nil

	case <-timer:
		var zero T
		return zero, ErrTimeout

	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (t Task[T]) fallback(err error) T {
	if t.Fallback == nil {
		var zero T
		return zero
	}
	return t.Fallback(err)
}
