// internal/game/menu.go
//
// Panel menus that run between games: the start gate, the sound chooser
// and the yellow/red yes-no prompt.

package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/panel"
)

// WaitForStart chases the LEDs until any button is pressed. If no folder
// has been chosen yet the sound chooser runs before returning.
func (e *Engine) WaitForStart(ctx context.Context) error {
	e.emit(Event{Kind: EventAwaitStart})
	for pressed := false; !pressed; {
		for i := 0; i < panel.Size && !pressed; i++ {
			e.setLED(i, true)
			err := e.clk.Sleep(ctx, e.cfg.IdleStep)
			e.setLED(i, false)
			if err != nil {
				return err
			}
			_, ok, err := e.input.Poll(ctx)
			if err != nil {
				return err
			}
			pressed = ok
		}
	}
	if e.Folder() == 0 {
		log.Info().Msg("game: no folder selected, asking")
		return e.ChooseSound(ctx)
	}
	return nil
}

// ChooseSound lights the whole panel and waits for the player to pick a
// sound bank. The chosen button stays lit for the configured hold.
func (e *Engine) ChooseSound(ctx context.Context) error {
	e.emit(Event{Kind: EventChooseSound})
	if err := e.lights.All(true); err != nil {
		log.Warn().Err(err).Msg("game: chooser lights")
	}
	for {
		button, err := e.input.Wait(ctx)
		if err != nil {
			return err
		}
		folder, ok := e.catalog.FolderForButton(button)
		if !ok {
			log.Debug().Int("button", button).Msg("game: button has no sound")
			continue
		}
		if err := e.SelectFolder(folder); err != nil {
			if errors.Is(err, ErrFolderOutOfRange) {
				log.Warn().Err(err).Int("button", button).Msg("game: catalog folder not allowed")
				continue
			}
			return err
		}
		if err := e.lights.All(false); err != nil {
			log.Warn().Err(err).Msg("game: chooser lights off")
		}
		e.setLED(button, true)
		err = e.clk.Sleep(ctx, e.cfg.ChoiceHold)
		e.setLED(button, false)
		return err
	}
}

// AskYesNo lights the yellow (yes) and red (no) buttons and waits for one
// of them. Other buttons are ignored.
func (e *Engine) AskYesNo(ctx context.Context) (bool, error) {
	e.setLED(panel.Yellow, true)
	e.setLED(panel.Red, true)
	defer func() {
		e.setLED(panel.Yellow, false)
		e.setLED(panel.Red, false)
	}()
	for {
		button, err := e.input.Wait(ctx)
		if err != nil {
			return false, err
		}
		switch button {
		case panel.Yellow:
			return true, nil
		case panel.Red:
			return false, nil
		}
	}
}

// setLED drives one LED, logging failures.
func (e *Engine) setLED(i int, on bool) {
	if err := e.lights.Set(i, on); err != nil {
		log.Warn().Err(err).Int("led", i).Bool("on", on).Msg("game: led")
	}
}
