// internal/panel/sampler.go
//
// Debounced button sampling.
//
// Poll scans the buttons in index order and reports the first pressed one.
// Once a press is seen it holds for the debounce time and then blocks until
// the button is released, so one physical press yields exactly one event.
// Lowest index wins when several buttons are down at once.

package panel

import (
	"context"
	"fmt"
	"time"

	"github.com/robalobadob/simon/internal/clock"
)

const (
	DefaultDebounce     = 150 * time.Millisecond
	DefaultReleasePoll  = 5 * time.Millisecond
	DefaultPollInterval = 10 * time.Millisecond
)

// Sampler reads presses from a Board.
type Sampler struct {
	board        Board
	clk          clock.Clock
	debounce     time.Duration
	releasePoll  time.Duration
	pollInterval time.Duration
}

// NewSampler returns a Sampler with the given debounce hold.
// A zero debounce selects DefaultDebounce.
func NewSampler(b Board, clk clock.Clock, debounce time.Duration) *Sampler {
	if clk == nil {
		clk = clock.Real{}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Sampler{
		board:        b,
		clk:          clk,
		debounce:     debounce,
		releasePoll:  DefaultReleasePoll,
		pollInterval: DefaultPollInterval,
	}
}

// Poll performs one scan. ok is false when no button is down.
func (s *Sampler) Poll(ctx context.Context) (index int, ok bool, err error) {
	for i := 0; i < Size; i++ {
		high, err := s.board.ReadButton(i)
		if err != nil {
			return 0, false, fmt.Errorf("panel: read button %d: %w", i, err)
		}
		if high {
			continue
		}
		if err := s.clk.Sleep(ctx, s.debounce); err != nil {
			return 0, false, err
		}
		if err := s.waitRelease(ctx, i); err != nil {
			return 0, false, err
		}
		return i, true, nil
	}
	return 0, false, nil
}

func (s *Sampler) waitRelease(ctx context.Context, i int) error {
	for {
		high, err := s.board.ReadButton(i)
		if err != nil {
			return fmt.Errorf("panel: read button %d: %w", i, err)
		}
		if high {
			return nil
		}
		if err := s.clk.Sleep(ctx, s.releasePoll); err != nil {
			return err
		}
	}
}

// Wait polls until a button is pressed or ctx ends.
func (s *Sampler) Wait(ctx context.Context) (int, error) {
	for {
		i, ok, err := s.Poll(ctx)
		if err != nil {
			return 0, err
		}
		if ok {
			return i, nil
		}
		if err := s.clk.Sleep(ctx, s.pollInterval); err != nil {
			return 0, err
		}
	}
}

// Idle sleeps for one poll interval; callers polling in their own loop use
// it between scans.
func (s *Sampler) Idle(ctx context.Context) error {
	return s.clk.Sleep(ctx, s.pollInterval)
}
