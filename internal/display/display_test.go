package display

import (
	"testing"

	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/session"
)

func TestFit(t *testing.T) {
	if got := Fit("Score: 10"); got != "Score: 10       " {
		t.Fatalf("got %q", got)
	}
	if got := Fit("Waiting for login..."); got != "Waiting for logi" {
		t.Fatalf("got %q", got)
	}
}

func TestObserverTexts(t *testing.T) {
	d := &Log{}
	o := Observer{D: d}

	cases := []struct {
		ev     game.Event
		l1, l2 string
	}{
		{game.Event{Kind: game.EventGameStarted}, "Game Started!", "Watch Simon"},
		{game.Event{Kind: game.EventDeviceTurn, Score: 20}, "Score: 20", "Simon's Turn"},
		{game.Event{Kind: game.EventPlayerTurn, Score: 20}, "Score: 20", "Your Turn"},
		{game.Event{Kind: game.EventGameOver, Score: 40}, "Game Over!", "Score: 40"},
		{game.Event{Kind: game.EventFolderSelected, FolderName: "Dogs"}, "Sound Selected:", "Dogs"},
	}
	for _, c := range cases {
		o.OnEvent(c.ev)
		l1, l2 := d.Lines()
		if l1 != Fit(c.l1) || l2 != Fit(c.l2) {
			t.Fatalf("%s: got %q / %q", c.ev.Kind, l1, l2)
		}
	}

	o.LoggedIn(session.User{ID: "7", Username: "ana"})
	if l1, l2 := d.Lines(); l1 != Fit("Hello, ana") || l2 != Fit("ID: 7") {
		t.Fatalf("greeting: %q / %q", l1, l2)
	}
}
