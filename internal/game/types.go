// internal/game/types.go
//
// Core type definitions for the Simon game engine.
// Defines:
//   - State: phase of the turn-taking state machine.
//   - Outcome: result of checking one player press.
//   - Event / Observer: notifications pushed to display, ledger and uploader.
//   - Snapshot: read-only view served by the web server.

package game

import (
	"errors"
	"time"
)

// State is the engine's current phase.
//
//	idle → device_turn → player_turn → device_turn | game_over → idle
type State string

const (
	StateIdle       State = "idle"
	StateDeviceTurn State = "device_turn"
	StatePlayerTurn State = "player_turn"
	StateGameOver   State = "game_over"
)

// Outcome is the verdict on a single press during the player's turn.
type Outcome int

const (
	OutcomeCorrect       Outcome = iota // matched, more moves to go
	OutcomeRoundComplete                // matched the last move of the round
	OutcomeMismatch                     // wrong button, game over
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeRoundComplete:
		return "round_complete"
	case OutcomeMismatch:
		return "mismatch"
	}
	return "unknown"
}

var (
	// ErrFolderOutOfRange rejects a folder selection outside the configured range.
	ErrFolderOutOfRange = errors.New("folder out of range")
	// ErrNoFolder is returned when a game is started before a folder was chosen.
	ErrNoFolder = errors.New("no sound folder selected")
	// ErrState is returned when an operation is invoked in the wrong phase.
	ErrState = errors.New("operation not valid in current state")
	// ErrGameInProgress rejects a folder change while a game is running.
	ErrGameInProgress = errors.New("game in progress")
)

// EventKind names what happened.
type EventKind string

const (
	EventFolderSelected EventKind = "folder_selected"
	EventAwaitStart     EventKind = "await_start"
	EventChooseSound    EventKind = "choose_sound"
	EventGameStarted    EventKind = "game_started"
	EventDeviceTurn     EventKind = "device_turn"
	EventPlayerTurn     EventKind = "player_turn"
	EventRoundComplete  EventKind = "round_complete"
	EventGameOver       EventKind = "game_over"
	EventAskChangeSound EventKind = "ask_change_sound"
)

// Event is pushed to observers. Fields that do not apply are zero.
type Event struct {
	Kind       EventKind
	Score      int
	Round      int // sequence length at the time of the event
	Folder     int
	FolderName string
	At         time.Time
}

// Observer receives engine events on the engine's goroutine. The one
// exception is FolderSelected from an operator console while the engine is
// idle, which arrives on the console's goroutine. Implementations must
// return quickly and be safe for that.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Snapshot is a copy of the engine's state at one instant.
type Snapshot struct {
	State       State  `json:"state"`
	Round       int    `json:"round"`
	PlayerIndex int    `json:"playerIndex"`
	Score       int    `json:"score"`
	Folder      int    `json:"folder"`
	FolderName  string `json:"folderName,omitempty"`
	StepDelayMs int64  `json:"stepDelayMs"`
	Games       int    `json:"games"`
}
