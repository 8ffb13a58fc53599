// internal/remote/reporter.go
//
// Reporter turns game-over events into ledger rows and score uploads.
//
// The engine calls OnEvent on its own goroutine, so OnEvent only records
// the result and queues the upload; a worker started with Run does the
// network call. Games played while nobody is logged in are recorded but
// never uploaded.

package remote

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/session"
	"github.com/robalobadob/simon/internal/store"
)

// Submitter posts a final score.
type Submitter interface {
	SubmitScore(ctx context.Context, userID string, score int) error
}

// Players reports who is logged in.
type Players interface {
	Current() (session.User, bool)
}

type upload struct {
	resultID int64
	userID   string
	score    int
}

// Reporter records results and forwards them to the score service.
type Reporter struct {
	submit  Submitter // nil when offline
	players Players
	ledger  store.Store
	queue   chan upload
	timeout time.Duration
}

// NewReporter builds a reporter. submit may be nil for offline mode.
func NewReporter(submit Submitter, players Players, ledger store.Store) *Reporter {
	return &Reporter{
		submit:  submit,
		players: players,
		ledger:  ledger,
		queue:   make(chan upload, 16),
		timeout: 10 * time.Second,
	}
}

// OnEvent implements game.Observer.
func (r *Reporter) OnEvent(ev game.Event) {
	if ev.Kind != game.EventGameOver {
		return
	}
	user, loggedIn := r.players.Current()
	res := store.Result{
		UserID:    user.ID,
		Username:  user.Username,
		Score:     ev.Score,
		Rounds:    ev.Round,
		Folder:    ev.Folder,
		CreatedAt: ev.At.UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	id, err := r.ledger.SaveResult(ctx, res)
	cancel()
	if err != nil {
		log.Error().Err(err).Int("score", ev.Score).Msg("reporter: save result")
	}

	switch {
	case !loggedIn:
		log.Info().Int("score", ev.Score).Msg("reporter: no user logged in, skipping upload")
	case r.submit == nil:
		log.Info().Int("score", ev.Score).Msg("reporter: offline, skipping upload")
	default:
		select {
		case r.queue <- upload{resultID: id, userID: user.ID, score: ev.Score}:
		default:
			log.Warn().Int("score", ev.Score).Msg("reporter: upload queue full, dropping")
		}
	}
}

// Run uploads queued scores until ctx ends.
func (r *Reporter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-r.queue:
			r.send(ctx, u)
		}
	}
}

func (r *Reporter) send(ctx context.Context, u upload) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.submit.SubmitScore(ctx, u.userID, u.score); err != nil {
		log.Warn().Err(err).Str("user", u.userID).Int("score", u.score).Msg("reporter: upload failed")
		return
	}
	log.Info().Str("user", u.userID).Int("score", u.score).Msg("reporter: score uploaded")
	if u.resultID == 0 {
		return
	}
	if err := r.ledger.MarkUploaded(ctx, u.resultID); err != nil {
		log.Warn().Err(err).Int64("result", u.resultID).Msg("reporter: mark uploaded")
	}
}
