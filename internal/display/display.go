// internal/display/display.go
//
// 16x2 character display and the observer that keeps it current.

package display

import (
	"strconv"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/session"
)

// Width is the number of character cells per line.
const Width = 16

// Display shows two lines of text.
type Display interface {
	Show(line1, line2 string) error
}

// Fit truncates s to the display width and pads it with spaces.
func Fit(s string) string {
	return runewidth.FillRight(runewidth.Truncate(s, Width, ""), Width)
}

// Log is a Display that writes each screen to the log.
type Log struct {
	mu           sync.Mutex
	line1, line2 string
}

func (l *Log) Show(line1, line2 string) error {
	l.mu.Lock()
	l.line1, l.line2 = Fit(line1), Fit(line2)
	l.mu.Unlock()
	log.Info().Str("line1", line1).Str("line2", line2).Msg("display")
	return nil
}

// Lines returns what is currently shown.
func (l *Log) Lines() (string, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.line1, l.line2
}

// Observer renders game and login events.
type Observer struct {
	D Display
}

func score(n int) string { return "Score: " + strconv.Itoa(n) }

// OnEvent implements game.Observer.
func (o Observer) OnEvent(ev game.Event) {
	var l1, l2 string
	switch ev.Kind {
	case game.EventAwaitStart:
		l1, l2 = "Press a button", "to start game!"
	case game.EventChooseSound:
		l1, l2 = "Choose Sound:", "Press a button"
	case game.EventFolderSelected:
		l1, l2 = "Sound Selected:", ev.FolderName
	case game.EventGameStarted:
		l1, l2 = "Game Started!", "Watch Simon"
	case game.EventDeviceTurn:
		l1, l2 = score(ev.Score), "Simon's Turn"
	case game.EventPlayerTurn:
		l1, l2 = score(ev.Score), "Your Turn"
	case game.EventRoundComplete:
		l1, l2 = "Correct!", score(ev.Score)
	case game.EventGameOver:
		l1, l2 = "Game Over!", score(ev.Score)
	case game.EventAskChangeSound:
		l1, l2 = "Change Sound?", "Yes:Ylw  No:Red"
	default:
		return
	}
	o.show(l1, l2)
}

// Prompt shows an arbitrary two-line message (startup prompts).
func (o Observer) Prompt(line1, line2 string) { o.show(line1, line2) }

// LoggedIn greets a player after the login handshake.
func (o Observer) LoggedIn(u session.User) {
	o.show("Hello, "+u.Username, "ID: "+u.ID)
}

func (o Observer) show(l1, l2 string) {
	if err := o.D.Show(l1, l2); err != nil {
		log.Warn().Err(err).Msg("display: show")
	}
}
