// internal/clock/clock.go
//
// Blocking waits used by the panel, the audio player and the game engine.
// Every hold in the game (debounce, step delay, LED flash) goes through a
// Clock so it can be cancelled with a context and faked in tests.

package clock

import (
	"context"
	"sync"
	"time"
)

// Clock sleeps for d or until ctx is done.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the wall clock.
type Real struct{}

// Sleep blocks for d. It returns ctx.Err() if the context ends first.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fake records requested sleeps without waiting.
// OnSleep, when set, runs after each recorded sleep (tests use it to
// release a simulated button once the debounce hold has happened).
type Fake struct {
	mu      sync.Mutex
	sleeps  []time.Duration
	OnSleep func(d time.Duration)
}

// Sleep records d and returns immediately.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.sleeps = append(f.sleeps, d)
	hook := f.OnSleep
	f.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return nil
}

// Sleeps returns a copy of every recorded duration.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

// Total is the sum of all recorded sleeps.
func (f *Fake) Total() time.Duration {
	var sum time.Duration
	for _, d := range f.Sleeps() {
		sum += d
	}
	return sum
}

// Reset forgets the recorded sleeps.
func (f *Fake) Reset() {
	f.mu.Lock()
	f.sleeps = nil
	f.mu.Unlock()
}
