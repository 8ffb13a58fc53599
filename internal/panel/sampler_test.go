package panel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/simon/internal/clock"
)

func TestPollNoPress(t *testing.T) {
	b := NewSimBoard()
	clk := &clock.Fake{}
	s := NewSampler(b, clk, 0)

	_, ok, err := s.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if ok {
		t.Fatal("expected no press")
	}
	if len(clk.Sleeps()) != 0 {
		t.Fatal("an idle scan must not block")
	}
}

func TestPollDebouncesAndWaitsForRelease(t *testing.T) {
	b := NewSimBoard()
	b.Tap(2)
	clk := &clock.Fake{}
	s := NewSampler(b, clk, 150*time.Millisecond)

	i, ok, err := s.Poll(context.Background())
	if err != nil || !ok || i != 2 {
		t.Fatalf("want (2,true,nil), got (%d,%v,%v)", i, ok, err)
	}
	sleeps := clk.Sleeps()
	if len(sleeps) == 0 || sleeps[0] != 150*time.Millisecond {
		t.Fatalf("expected debounce hold first, got %v", sleeps)
	}
	if b.Pending() != 0 {
		t.Fatal("press should be fully consumed after release")
	}
}

type stuckBoard struct{ low map[int]bool }

func (s stuckBoard) ReadButton(i int) (bool, error) { return !s.low[i], nil }
func (stuckBoard) SetLED(int, bool) error           { return nil }
func (stuckBoard) Close() error                     { return nil }

func TestPollCancelledWhileHeld(t *testing.T) {
	b := stuckBoard{low: map[int]bool{1: true, 3: true}}
	ctx, cancel := context.WithCancel(context.Background())
	clk := &clock.Fake{}
	// Lines never release: cancel once the sampler starts waiting.
	clk.OnSleep = func(d time.Duration) {
		if d == DefaultReleasePoll {
			cancel()
		}
	}
	s := NewSampler(b, clk, 0)

	_, _, err := s.Poll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation while held, got %v", err)
	}
}

func TestPollReportsLowestOfSimultaneous(t *testing.T) {
	b := stuckBoard{low: map[int]bool{1: true, 3: true}}
	clk := &clock.Fake{}
	s := NewSampler(b, clk, 0)
	// release everything after the debounce hold
	clk.OnSleep = func(d time.Duration) {
		if d == DefaultDebounce {
			b.low[1], b.low[3] = false, false
		}
	}
	i, ok, err := s.Poll(context.Background())
	if err != nil || !ok || i != 1 {
		t.Fatalf("want (1,true,nil), got (%d,%v,%v)", i, ok, err)
	}
}

type errBoard struct{ stuckBoard }

func (errBoard) ReadButton(int) (bool, error) { return false, errors.New("bus fault") }

func TestPollPropagatesReadErrors(t *testing.T) {
	s := NewSampler(errBoard{}, &clock.Fake{}, 0)
	if _, _, err := s.Poll(context.Background()); err == nil {
		t.Fatal("expected read error")
	}
}

func TestWaitBlocksUntilPress(t *testing.T) {
	b := NewSimBoard()
	clk := &clock.Fake{}
	polls := 0
	clk.OnSleep = func(d time.Duration) {
		if d == DefaultPollInterval {
			polls++
			if polls == 3 {
				b.Tap(4)
			}
		}
	}
	s := NewSampler(b, clk, 0)
	i, err := s.Wait(context.Background())
	if err != nil || i != 4 {
		t.Fatalf("want 4, got %d (%v)", i, err)
	}
	if polls != 3 {
		t.Fatalf("expected 3 idle polls, got %d", polls)
	}
}

func TestLightsAll(t *testing.T) {
	b := NewSimBoard()
	l := Lights{Board: b}
	if err := l.All(true); err != nil {
		t.Fatal(err)
	}
	for i, on := range b.LEDs() {
		if !on {
			t.Fatalf("led %d should be on", i)
		}
	}
	if err := l.Set(Size, true); err == nil {
		t.Fatal("expected range error")
	}
}
