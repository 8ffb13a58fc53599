// internal/store/store.go
//
// Score ledger: one row per finished game.
//
// The ledger backs the web server's score endpoints and remembers which
// results still have to reach the remote score service.

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a result ID does not exist.
var ErrNotFound = errors.New("not found")

// Result is one finished game.
type Result struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId,omitempty"` // empty for offline games
	Username  string    `json:"username,omitempty"`
	Score     int       `json:"score"`
	Rounds    int       `json:"rounds"`
	Folder    int       `json:"folder"`
	Uploaded  bool      `json:"uploaded"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store defines the persistence interface for game results.
// Implementations: memory (this package) and SQLite.
type Store interface {
	// SaveResult inserts r and returns its assigned ID.
	SaveResult(ctx context.Context, r Result) (int64, error)

	// MarkUploaded flags a result as delivered to the score service.
	MarkUploaded(ctx context.Context, id int64) error

	// Recent lists the newest results first.
	Recent(ctx context.Context, limit int) ([]Result, error)

	// Top lists the best scores, ties broken by age (older first).
	Top(ctx context.Context, limit int) ([]Result, error)
}

const defaultLimit = 20

func clampLimit(n int) int {
	if n <= 0 || n > 100 {
		return defaultLimit
	}
	return n
}
