package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/session"
	"github.com/robalobadob/simon/internal/store"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []upload
	err   error
	done  chan struct{}
}

func (f *fakeSubmitter) SubmitScore(_ context.Context, userID string, score int) error {
	f.mu.Lock()
	f.calls = append(f.calls, upload{userID: userID, score: score})
	f.mu.Unlock()
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func TestReporterRecordsOfflineGames(t *testing.T) {
	st := store.NewMemoryStore()
	sub := &fakeSubmitter{}
	r := NewReporter(sub, session.NewManager("s", time.Hour), st)

	r.OnEvent(game.Event{Kind: game.EventRoundComplete, Score: 10})
	r.OnEvent(game.Event{Kind: game.EventGameOver, Score: 30, Round: 4, Folder: 3, At: time.Now()})

	rows, _ := st.Recent(context.Background(), 10)
	if len(rows) != 1 || rows[0].Score != 30 || rows[0].Rounds != 4 || rows[0].UserID != "" {
		t.Fatalf("unexpected ledger %+v", rows)
	}
	if len(r.queue) != 0 {
		t.Fatal("nothing should be queued without a user")
	}
}

func TestReporterUploadsForLoggedInUser(t *testing.T) {
	st := store.NewMemoryStore()
	sub := &fakeSubmitter{done: make(chan struct{}, 1)}
	players := session.NewManager("s", time.Hour)
	if _, _, err := players.Login(session.User{ID: "9", Username: "kim"}); err != nil {
		t.Fatal(err)
	}
	r := NewReporter(sub, players, st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.OnEvent(game.Event{Kind: game.EventGameOver, Score: 50, Round: 6, Folder: 1, At: time.Now()})

	select {
	case <-sub.done:
	case <-time.After(time.Second):
		t.Fatal("upload not attempted")
	}
	if sub.calls[0].userID != "9" || sub.calls[0].score != 50 {
		t.Fatalf("unexpected upload %+v", sub.calls[0])
	}
	deadline := time.Now().Add(time.Second)
	for {
		rows, _ := st.Recent(context.Background(), 1)
		if len(rows) == 1 && rows[0].Uploaded {
			if rows[0].Username != "kim" {
				t.Fatalf("username not recorded: %+v", rows[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("result never marked uploaded: %+v", rows)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReporterKeepsFailedUploadPending(t *testing.T) {
	st := store.NewMemoryStore()
	sub := &fakeSubmitter{err: errors.New("down"), done: make(chan struct{}, 1)}
	players := session.NewManager("s", time.Hour)
	_, _, _ = players.Login(session.User{ID: "1", Username: "a"})
	r := NewReporter(sub, players, st)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.OnEvent(game.Event{Kind: game.EventGameOver, Score: 20, At: time.Now()})
	<-sub.done
	time.Sleep(20 * time.Millisecond)
	rows, _ := st.Recent(context.Background(), 1)
	if len(rows) != 1 || rows[0].Uploaded {
		t.Fatalf("failed upload must stay pending: %+v", rows)
	}
}

func TestReporterOfflineClientSkipsQueue(t *testing.T) {
	players := session.NewManager("s", time.Hour)
	_, _, _ = players.Login(session.User{ID: "1", Username: "a"})
	r := NewReporter(nil, players, store.NewMemoryStore())
	r.OnEvent(game.Event{Kind: game.EventGameOver, Score: 20, At: time.Now()})
	if len(r.queue) != 0 {
		t.Fatal("offline reporter must not queue uploads")
	}
}
