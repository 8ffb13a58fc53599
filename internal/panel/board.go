// internal/panel/board.go
//
// The physical panel: five push buttons and five LEDs, one pair per colour.
//
// Buttons are wired active-low with pull-ups, so a pressed button reads as
// a low level. LEDs are driven high to light.
//
// Index order (shared by buttons, LEDs and game moves):
//   0 purple, 1 green, 2 white, 3 red ("no"), 4 yellow ("yes")

package panel

import "fmt"

// Size is the number of button/LED pairs on the panel.
const Size = 5

// Well-known indices used by the yes/no prompts.
const (
	Red    = 3
	Yellow = 4
)

// Board is the raw pin access the rest of the program needs.
type Board interface {
	// ReadButton returns the raw level of button i (true = high = released).
	ReadButton(i int) (high bool, err error)
	// SetLED drives LED i.
	SetLED(i int, on bool) error
	// Close releases the pins and turns the LEDs off.
	Close() error
}

// Lights wraps a Board's LED side.
type Lights struct {
	Board Board
}

// Set drives one LED.
func (l Lights) Set(i int, on bool) error {
	if i < 0 || i >= Size {
		return fmt.Errorf("panel: led index %d out of range", i)
	}
	return l.Board.SetLED(i, on)
}

// All drives every LED to the same state, stopping at the first error.
func (l Lights) All(on bool) error {
	for i := 0; i < Size; i++ {
		if err := l.Board.SetLED(i, on); err != nil {
			return err
		}
	}
	return nil
}
