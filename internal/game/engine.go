// internal/game/engine.go
//
// Core game engine for the Simon panel.
// Responsibilities:
//   - Own the move sequence, the player's cursor, the score and the
//     playback speed (no package-level state).
//   - Device turn: extend the sequence by one random move and play it back
//     on the LEDs and the audio module.
//   - Player turn: read presses and verify them against the sequence.
//   - Game over: flash the panel and report the final score.
//
// Notes:
//   - All waits go through clock.Clock and honour the context; nothing runs
//     concurrently inside the engine, the web server lives on its own
//     goroutine and only reads Snapshot().
//   - Audio and LED failures are logged and ignored: playback is best effort.

package game

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/catalog"
	"github.com/robalobadob/simon/internal/clock"
	"github.com/robalobadob/simon/internal/panel"
)

// Audio plays one track from one folder of the audio module.
type Audio interface {
	PlayFolder(ctx context.Context, folder, track int) error
}

// Lights drives the panel LEDs.
type Lights interface {
	Set(i int, on bool) error
	All(on bool) error
}

// Input reports debounced button presses.
type Input interface {
	Poll(ctx context.Context) (int, bool, error)
	Wait(ctx context.Context) (int, error)
	Idle(ctx context.Context) error
}

// Rand draws the next move.
type Rand interface {
	IntN(n int) int
}

// Deps are the engine's collaborators.
type Deps struct {
	Audio   Audio
	Lights  Lights
	Input   Input
	Clock   clock.Clock
	Rand    Rand
	Catalog *catalog.Catalog
}

// Engine is the Simon state machine.
type Engine struct {
	cfg     Config
	audio   Audio
	lights  Lights
	input   Input
	clk     clock.Clock
	rnd     Rand
	catalog *catalog.Catalog

	mu          sync.RWMutex // guards the fields below for Snapshot readers
	state       State
	sequence    []int
	playerIndex int
	score       int
	folder      int
	stepDelay   time.Duration
	games       int
	observers   []Observer
}

// New constructs an engine in the idle state.
func New(cfg Config, d Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if d.Audio == nil || d.Lights == nil || d.Input == nil {
		return nil, fmt.Errorf("game: audio, lights and input are required")
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Rand == nil {
		d.Rand = NewRand()
	}
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	return &Engine{
		cfg:       cfg,
		audio:     d.Audio,
		lights:    d.Lights,
		input:     d.Input,
		clk:       d.Clock,
		rnd:       d.Rand,
		catalog:   d.Catalog,
		state:     StateIdle,
		folder:    cfg.DefaultFolder,
		stepDelay: cfg.StepDelay,
	}, nil
}

// NewRand returns a PCG source seeded from crypto/rand, falling back to the
// wall clock if the system entropy source fails.
func NewRand() *rand.Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		log.Warn().Err(err).Msg("game: entropy unavailable, seeding from clock")
		binary.LittleEndian.PutUint64(seed[:8], uint64(time.Now().UnixNano()))
		binary.LittleEndian.PutUint64(seed[8:], uint64(time.Now().Unix()))
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}

// Subscribe registers an observer. Not safe to call while Run is active.
func (e *Engine) Subscribe(o Observer) {
	e.mu.Lock()
	e.observers = append(e.observers, o)
	e.mu.Unlock()
}

func (e *Engine) emit(ev Event) {
	ev.At = time.Now()
	e.mu.RLock()
	obs := append([]Observer(nil), e.observers...)
	e.mu.RUnlock()
	for _, o := range obs {
		o.OnEvent(ev)
	}
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := Snapshot{
		State:       e.state,
		Round:       len(e.sequence),
		PlayerIndex: e.playerIndex,
		Score:       e.score,
		Folder:      e.folder,
		StepDelayMs: e.stepDelay.Milliseconds(),
		Games:       e.games,
	}
	if e.folder != 0 {
		s.FolderName = e.catalog.Name(e.folder)
	}
	return s
}

// Folder returns the selected folder, 0 when none is selected.
func (e *Engine) Folder() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.folder
}

// SelectFolder picks the sound bank used for playback. Only allowed while
// idle; out-of-range values and mid-game changes are rejected and leave the
// selection unchanged.
func (e *Engine) SelectFolder(folder int) error {
	if folder < e.cfg.MinFolder || folder > e.cfg.MaxFolder {
		return fmt.Errorf("%w: %d (valid %d..%d)", ErrFolderOutOfRange, folder, e.cfg.MinFolder, e.cfg.MaxFolder)
	}
	e.mu.Lock()
	if e.state != StateIdle {
		st := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: folder change in %s", ErrGameInProgress, st)
	}
	e.folder = folder
	e.mu.Unlock()
	log.Info().Int("folder", folder).Str("name", e.catalog.Name(folder)).Msg("game: folder selected")
	e.emit(Event{Kind: EventFolderSelected, Folder: folder, FolderName: e.catalog.Name(folder)})
	return nil
}

// StartGame resets the sequence, score and speed and enters the device turn.
func (e *Engine) StartGame(ctx context.Context) error {
	e.mu.Lock()
	if e.folder == 0 {
		e.mu.Unlock()
		return ErrNoFolder
	}
	e.sequence = e.sequence[:0]
	e.playerIndex = 0
	e.score = 0
	e.stepDelay = e.cfg.StepDelay
	e.games++
	e.state = StateDeviceTurn
	folder := e.folder
	e.mu.Unlock()

	log.Info().Int("folder", folder).Msg("game: started")
	e.emit(Event{Kind: EventGameStarted, Folder: folder, FolderName: e.catalog.Name(folder)})
	return e.clk.Sleep(ctx, e.cfg.StartPause)
}

// DeviceTurn appends one random move and plays the whole sequence back,
// then speeds up playback and hands over to the player.
func (e *Engine) DeviceTurn(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateDeviceTurn {
		st := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: device turn in %s", ErrState, st)
	}
	e.sequence = append(e.sequence, e.rnd.IntN(panel.Size))
	moves := append([]int(nil), e.sequence...)
	delay, folder, score := e.stepDelay, e.folder, e.score
	e.mu.Unlock()

	e.emit(Event{Kind: EventDeviceTurn, Score: score, Round: len(moves), Folder: folder})
	log.Debug().Int("round", len(moves)).Dur("step", delay).Msg("game: device turn")

	for _, m := range moves {
		if err := e.show(ctx, m, folder, delay); err != nil {
			return err
		}
		if err := e.clk.Sleep(ctx, e.cfg.StepPause); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.stepDelay = max(e.cfg.MinStepDelay, e.stepDelay-e.cfg.StepRamp)
	e.playerIndex = 0
	e.state = StatePlayerTurn
	e.mu.Unlock()

	e.emit(Event{Kind: EventPlayerTurn, Score: score, Round: len(moves), Folder: folder})
	return nil
}

// show lights move m, plays its sound and holds for d.
func (e *Engine) show(ctx context.Context, m, folder int, d time.Duration) error {
	if err := e.lights.Set(m, true); err != nil {
		log.Warn().Err(err).Int("led", m).Msg("game: led on")
	}
	if err := e.audio.PlayFolder(ctx, folder, m+1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Int("folder", folder).Int("track", m+1).Msg("game: play")
	}
	if err := e.clk.Sleep(ctx, d); err != nil {
		return err
	}
	if err := e.lights.Set(m, false); err != nil {
		log.Warn().Err(err).Int("led", m).Msg("game: led off")
	}
	return nil
}

// HandlePress checks one press against the sequence.
//
// A match echoes the move and advances the cursor; matching the final move
// awards the round and returns to the device turn. A mismatch moves the
// engine to game over without touching the score.
func (e *Engine) HandlePress(ctx context.Context, button int) (Outcome, error) {
	e.mu.Lock()
	if e.state != StatePlayerTurn {
		st := e.state
		e.mu.Unlock()
		return 0, fmt.Errorf("%w: press in %s", ErrState, st)
	}
	if button != e.sequence[e.playerIndex] {
		e.state = StateGameOver
		idx := e.playerIndex
		e.mu.Unlock()
		log.Info().Int("index", idx).Int("pressed", button).Msg("game: wrong button")
		return OutcomeMismatch, nil
	}
	folder := e.folder
	e.mu.Unlock()

	if err := e.show(ctx, button, folder, e.cfg.FeedbackHold); err != nil {
		return 0, err
	}

	e.mu.Lock()
	e.playerIndex++
	if e.playerIndex < len(e.sequence) {
		e.mu.Unlock()
		return OutcomeCorrect, nil
	}
	e.score += e.cfg.ScoreAward
	e.state = StateDeviceTurn
	score, round := e.score, len(e.sequence)
	e.mu.Unlock()

	log.Info().Int("score", score).Int("round", round).Msg("game: round complete")
	e.emit(Event{Kind: EventRoundComplete, Score: score, Round: round, Folder: folder})
	if err := e.clk.Sleep(ctx, e.cfg.RoundPause); err != nil {
		return OutcomeRoundComplete, err
	}
	return OutcomeRoundComplete, nil
}

// PlayerTurn reads presses until the round is complete or a press is wrong.
func (e *Engine) PlayerTurn(ctx context.Context) (Outcome, error) {
	for {
		button, ok, err := e.input.Poll(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			if err := e.input.Idle(ctx); err != nil {
				return 0, err
			}
			continue
		}
		out, err := e.HandlePress(ctx, button)
		if err != nil {
			return 0, err
		}
		if out != OutcomeCorrect {
			return out, nil
		}
	}
}

// GameOver flashes every LED, reports the final score and returns to idle.
func (e *Engine) GameOver(ctx context.Context) error {
	e.mu.RLock()
	st, score, round, folder := e.state, e.score, len(e.sequence), e.folder
	e.mu.RUnlock()
	if st != StateGameOver {
		return fmt.Errorf("%w: game over in %s", ErrState, st)
	}

	for i := 0; i < e.cfg.Flashes; i++ {
		if err := e.lights.All(true); err != nil {
			log.Warn().Err(err).Msg("game: flash on")
		}
		if err := e.clk.Sleep(ctx, e.cfg.FlashOn); err != nil {
			return err
		}
		if err := e.lights.All(false); err != nil {
			log.Warn().Err(err).Msg("game: flash off")
		}
		if err := e.clk.Sleep(ctx, e.cfg.FlashOff); err != nil {
			return err
		}
	}

	log.Info().Int("score", score).Int("round", round).Msg("game: over")
	e.emit(Event{Kind: EventGameOver, Score: score, Round: round, Folder: folder})

	e.mu.Lock()
	e.state = StateIdle
	e.mu.Unlock()
	return nil
}

// PlayGame runs one full game from start to the end of the game-over
// sequence and returns the final score.
func (e *Engine) PlayGame(ctx context.Context) (int, error) {
	if err := e.StartGame(ctx); err != nil {
		return 0, err
	}
	for {
		if err := e.DeviceTurn(ctx); err != nil {
			return 0, err
		}
		out, err := e.PlayerTurn(ctx)
		if err != nil {
			return 0, err
		}
		if out == OutcomeMismatch {
			break
		}
	}
	score := e.Snapshot().Score
	return score, e.GameOver(ctx)
}

// Run is the panel's main loop: wait at the start gate, play a game,
// optionally offer a new sound, repeat until ctx ends.
func (e *Engine) Run(ctx context.Context) error {
	for {
		if err := e.WaitForStart(ctx); err != nil {
			return err
		}
		if _, err := e.PlayGame(ctx); err != nil {
			return err
		}
		if !e.cfg.AskChangeSound {
			continue
		}
		e.emit(Event{Kind: EventAskChangeSound})
		change, err := e.AskYesNo(ctx)
		if err != nil {
			return err
		}
		if change {
			if err := e.ChooseSound(ctx); err != nil {
				return err
			}
		}
	}
}
