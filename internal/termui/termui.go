// internal/termui/termui.go
//
// Terminal stand-in for the physical panel: draws the 16x2 LCD and the five
// LEDs with termbox, and turns keys 1-5 into button presses on a SimBoard.
//
// Keys:
//   1..5      press buttons 0..4 (purple, green, white, red, yellow)
//   q / Esc   quit
//
// termbox is not safe for concurrent use; every draw goes through s.mu.

package termui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/nsf/termbox-go"

	"github.com/robalobadob/simon/internal/display"
	"github.com/robalobadob/simon/internal/panel"
)

// PressWindow is how long a key press holds a button down.
const PressWindow = 250 * time.Millisecond

var ledColors = [panel.Size]termbox.Attribute{
	termbox.ColorMagenta,
	termbox.ColorGreen,
	termbox.ColorWhite,
	termbox.ColorRed,
	termbox.ColorYellow,
}

var ledNames = [panel.Size]string{"Purple", "Green", "White", "Red", "Yellow"}

// Screen is a terminal panel. It implements display.Display.
type Screen struct {
	board *panel.SimBoard
	hold  time.Duration

	mu           sync.Mutex
	line1, line2 string
}

// Open takes over the terminal and attaches to board's LEDs.
func Open(board *panel.SimBoard) (*Screen, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	s := &Screen{board: board, hold: PressWindow}
	board.OnLED = func(int, bool) { s.redraw() }
	s.redraw()
	return s, nil
}

// Close restores the terminal.
func (s *Screen) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	termbox.Close()
	return nil
}

// Show implements display.Display.
func (s *Screen) Show(line1, line2 string) error {
	s.mu.Lock()
	s.line1, s.line2 = display.Fit(line1), display.Fit(line2)
	s.mu.Unlock()
	s.redraw()
	return nil
}

// Run handles keyboard input until the user quits (nil) or ctx ends.
func (s *Screen) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			termbox.Interrupt()
		case <-done:
		}
	}()
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt:
			return ctx.Err()
		case termbox.EventError:
			return ev.Err
		case termbox.EventResize:
			s.redraw()
		case termbox.EventKey:
			if isQuit(ev) {
				return nil
			}
			if i, ok := buttonForKey(ev.Ch); ok {
				s.board.PressFor(i, s.hold)
			}
		}
	}
}

func isQuit(ev termbox.Event) bool {
	return ev.Ch == 'q' || ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC
}

// buttonForKey maps '1'..'5' to button indexes 0..4.
func buttonForKey(ch rune) (int, bool) {
	if ch < '1' || ch > '1'+panel.Size-1 {
		return 0, false
	}
	return int(ch - '1'), true
}

func (s *Screen) redraw() {
	leds := s.board.LEDs()

	s.mu.Lock()
	defer s.mu.Unlock()
	const fg, bg = termbox.ColorDefault, termbox.ColorDefault
	_ = termbox.Clear(fg, bg)

	w := display.Width
	put(0, 0, "┌"+strings.Repeat("─", w)+"┐", fg, bg)
	put(0, 1, "│"+pad(s.line1)+"│", fg, bg)
	put(0, 2, "│"+pad(s.line2)+"│", fg, bg)
	put(0, 3, "└"+strings.Repeat("─", w)+"┘", fg, bg)

	x := 0
	for i := 0; i < panel.Size; i++ {
		cell := " " + string(rune('1'+i)) + " "
		cbg := bg
		if leds[i] {
			cbg = ledColors[i]
		}
		put(x, 5, "["+cell+"]", fg, cbg)
		x += 6
	}
	x = 0
	for i := 0; i < panel.Size; i++ {
		put(x, 6, runewidth.Truncate(ledNames[i], 5, ""), ledColors[i], bg)
		x += 6
	}
	put(0, 8, "keys 1-5 press a button, q quits", fg, bg)
	_ = termbox.Flush()
}

// pad keeps an empty line the same width as a filled one.
func pad(s string) string {
	if s == "" {
		return display.Fit("")
	}
	return s
}

// put writes str at (x, y), advancing by each rune's cell width.
func put(x, y int, str string, fg, bg termbox.Attribute) {
	for _, r := range str {
		termbox.SetCell(x, y, r, fg, bg)
		x += runewidth.RuneWidth(r)
	}
}
