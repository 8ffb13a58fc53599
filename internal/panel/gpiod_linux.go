// internal/panel/gpiod_linux.go
//
// GPIO backend on the Linux character device (/dev/gpiochipN).
// Pins are line offsets on a single chip.

package panel

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/warthog618/gpiod"
)

type gpiodBoard struct {
	chip    *gpiod.Chip
	buttons []*gpiod.Line
	leds    []*gpiod.Line
}

// OpenGpiod requests the given line offsets on chip (e.g. "gpiochip0").
func OpenGpiod(chip string, buttonLines, ledLines []int) (Board, error) {
	if len(buttonLines) != Size || len(ledLines) != Size {
		return nil, fmt.Errorf("panel: need %d button and %d led lines, got %d and %d",
			Size, Size, len(buttonLines), len(ledLines))
	}
	c, err := gpiod.NewChip(chip, gpiod.WithConsumer("simon"))
	if err != nil {
		return nil, fmt.Errorf("panel: open %s: %w", chip, err)
	}
	b := &gpiodBoard{chip: c}
	for _, off := range buttonLines {
		l, err := c.RequestLine(off, gpiod.AsInput, gpiod.WithPullUp)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("panel: request button line %d: %w", off, err)
		}
		b.buttons = append(b.buttons, l)
	}
	for _, off := range ledLines {
		l, err := c.RequestLine(off, gpiod.AsOutput(0))
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("panel: request led line %d: %w", off, err)
		}
		b.leds = append(b.leds, l)
	}
	log.Info().Str("chip", chip).Ints("buttons", buttonLines).Ints("leds", ledLines).Msg("panel: gpiod lines ready")
	return b, nil
}

func (b *gpiodBoard) ReadButton(i int) (bool, error) {
	v, err := b.buttons[i].Value()
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func (b *gpiodBoard) SetLED(i int, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return b.leds[i].SetValue(v)
}

func (b *gpiodBoard) Close() error {
	var errs []error
	for _, l := range b.leds {
		_ = l.SetValue(0)
		if err := l.Reconfigure(gpiod.AsInput); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, l.Close())
	}
	for _, l := range b.buttons {
		errs = append(errs, l.Close())
	}
	errs = append(errs, b.chip.Close())
	return errors.Join(errs...)
}
