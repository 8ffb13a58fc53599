// internal/game/config.go

package game

import (
	"fmt"
	"time"

	"github.com/robalobadob/simon/internal/catalog"
)

// Config holds the gameplay constants.
type Config struct {
	MinFolder     int
	MaxFolder     int
	DefaultFolder int // 0 = nothing selected yet

	StepDelay    time.Duration // initial on-time per move during playback
	MinStepDelay time.Duration // floor for StepDelay
	StepRamp     time.Duration // StepDelay reduction after every playback
	StepPause    time.Duration // dark gap between moves
	FeedbackHold time.Duration // on-time for the player's own correct press

	ScoreAward int

	StartPause time.Duration
	RoundPause time.Duration

	Flashes  int
	FlashOn  time.Duration
	FlashOff time.Duration

	IdleStep   time.Duration // LED chase step while waiting to start
	ChoiceHold time.Duration // how long the chosen sound's LED stays lit

	AskChangeSound bool
}

// DefaultConfig returns the panel's stock timings.
func DefaultConfig() Config {
	return Config{
		MinFolder:      1,
		MaxFolder:      7,
		StepDelay:      800 * time.Millisecond,
		MinStepDelay:   300 * time.Millisecond,
		StepRamp:       50 * time.Millisecond,
		StepPause:      300 * time.Millisecond,
		FeedbackHold:   300 * time.Millisecond,
		ScoreAward:     10,
		StartPause:     1000 * time.Millisecond,
		RoundPause:     1000 * time.Millisecond,
		Flashes:        3,
		FlashOn:        500 * time.Millisecond,
		FlashOff:       500 * time.Millisecond,
		IdleStep:       150 * time.Millisecond,
		ChoiceHold:     5 * time.Second,
		AskChangeSound: true,
	}
}

// Validate checks ranges the audio protocol and the ramp depend on.
func (c Config) Validate() error {
	if c.MinFolder < 1 || c.MaxFolder > catalog.MaxFolder || c.MinFolder > c.MaxFolder {
		return fmt.Errorf("game: folder range %d..%d must lie within 1..%d", c.MinFolder, c.MaxFolder, catalog.MaxFolder)
	}
	if c.DefaultFolder != 0 && (c.DefaultFolder < c.MinFolder || c.DefaultFolder > c.MaxFolder) {
		return fmt.Errorf("game: default folder %d outside %d..%d", c.DefaultFolder, c.MinFolder, c.MaxFolder)
	}
	if c.MinStepDelay < 0 || c.MinStepDelay > c.StepDelay {
		return fmt.Errorf("game: step delay floor %s above base %s", c.MinStepDelay, c.StepDelay)
	}
	if c.StepRamp < 0 {
		return fmt.Errorf("game: negative step ramp %s", c.StepRamp)
	}
	if c.ScoreAward <= 0 {
		return fmt.Errorf("game: score award must be positive, got %d", c.ScoreAward)
	}
	return nil
}
