// internal/panel/periph.go
//
// GPIO backend on periph.io host drivers. Pins are addressed by their
// registry names ("GPIO18", "P1_12", ...).

package panel

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

type periphBoard struct {
	buttons []gpio.PinIO
	leds    []gpio.PinIO
}

// OpenPeriph initialises the host drivers and claims the given pins.
// Buttons are configured as pulled-up inputs, LEDs as outputs driven low.
func OpenPeriph(buttonPins, ledPins []string) (Board, error) {
	if len(buttonPins) != Size || len(ledPins) != Size {
		return nil, fmt.Errorf("panel: need %d button and %d led pins, got %d and %d",
			Size, Size, len(buttonPins), len(ledPins))
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("panel: periph host init: %w", err)
	}

	b := &periphBoard{}
	for _, name := range buttonPins {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("panel: unknown button pin %q", name)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("panel: configure button %s: %w", name, err)
		}
		b.buttons = append(b.buttons, p)
	}
	for _, name := range ledPins {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("panel: unknown led pin %q", name)
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("panel: configure led %s: %w", name, err)
		}
		b.leds = append(b.leds, p)
	}
	log.Info().Strs("buttons", buttonPins).Strs("leds", ledPins).Msg("panel: periph pins ready")
	return b, nil
}

func (b *periphBoard) ReadButton(i int) (bool, error) {
	return b.buttons[i].Read() == gpio.High, nil
}

func (b *periphBoard) SetLED(i int, on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	return b.leds[i].Out(level)
}

func (b *periphBoard) Close() error {
	var errs []error
	for _, p := range b.leds {
		if err := p.Out(gpio.Low); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
