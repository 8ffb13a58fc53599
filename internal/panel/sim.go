// internal/panel/sim.go
//
// SimBoard is an in-memory panel. Tests script presses with Tap; the
// terminal UI holds buttons down for a wall-clock window with PressFor.

package panel

import (
	"sync"
	"time"
)

type tap struct {
	button int
	low    int // reads left that report the button as down
}

// SimBoard implements Board without hardware.
type SimBoard struct {
	mu     sync.Mutex
	taps   []tap
	held   [Size]time.Time
	leds   [Size]bool
	writes int

	// OnIdle runs (without the lock held) when a scan finds no scripted
	// tap left. Tests use it to cancel the run loop.
	OnIdle func()
	// OnLED runs after every LED change.
	OnLED func(i int, on bool)
}

// NewSimBoard returns an idle board with all LEDs off.
func NewSimBoard() *SimBoard { return &SimBoard{} }

// Tap queues a press of button i that is seen as down for two reads:
// the scan that detects it and the first release check.
func (b *SimBoard) Tap(buttons ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, i := range buttons {
		b.taps = append(b.taps, tap{button: i, low: 2})
	}
}

// PressFor holds button i down for d of wall-clock time.
func (b *SimBoard) PressFor(i int, d time.Duration) {
	if i < 0 || i >= Size {
		return
	}
	b.mu.Lock()
	b.held[i] = time.Now().Add(d)
	b.mu.Unlock()
}

// Pending reports how many scripted taps have not been consumed.
func (b *SimBoard) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.taps)
}

func (b *SimBoard) ReadButton(i int) (bool, error) {
	b.mu.Lock()
	if time.Now().Before(b.held[i]) {
		b.mu.Unlock()
		return false, nil
	}
	if len(b.taps) == 0 {
		hook := b.OnIdle
		b.mu.Unlock()
		if hook != nil && i == 0 {
			hook()
		}
		return true, nil
	}
	head := &b.taps[0]
	if head.button != i {
		b.mu.Unlock()
		return true, nil
	}
	if head.low > 0 {
		head.low--
		b.mu.Unlock()
		return false, nil
	}
	b.taps = b.taps[1:]
	b.mu.Unlock()
	return true, nil
}

func (b *SimBoard) SetLED(i int, on bool) error {
	b.mu.Lock()
	b.leds[i] = on
	b.writes++
	hook := b.OnLED
	b.mu.Unlock()
	if hook != nil {
		hook(i, on)
	}
	return nil
}

// LED reports the current state of LED i.
func (b *SimBoard) LED(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.leds[i]
}

// LEDs returns a snapshot of all LEDs.
func (b *SimBoard) LEDs() [Size]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.leds
}

// Writes counts SetLED calls.
func (b *SimBoard) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *SimBoard) Close() error {
	b.mu.Lock()
	b.leds = [Size]bool{}
	b.mu.Unlock()
	return nil
}
