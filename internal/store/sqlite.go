// internal/store/sqlite.go
//
// SQLite-backed Store. Expects the results table created by the embedded
// migrations (see assets/sql).

package store

import (
	"context"
	"database/sql"
	"time"
)

// SQLite stores results in a database/sql handle opened with go-sqlite3.
type SQLite struct{ db *sql.DB }

// NewSQLiteStore wraps an open, migrated database.
func NewSQLiteStore(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (s *SQLite) SaveResult(ctx context.Context, r Result) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO results(user_id, username, score, rounds, folder, uploaded, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		nullable(r.UserID), nullable(r.Username), r.Score, r.Rounds, r.Folder, r.Uploaded,
		r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLite) MarkUploaded(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE results SET uploaded=1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]Result, error) {
	return s.query(ctx, `
		SELECT id, COALESCE(user_id,''), COALESCE(username,''), score, rounds, folder, uploaded, created_at
		FROM results
		ORDER BY id DESC
		LIMIT ?`, clampLimit(limit))
}

func (s *SQLite) Top(ctx context.Context, limit int) ([]Result, error) {
	return s.query(ctx, `
		SELECT id, COALESCE(user_id,''), COALESCE(username,''), score, rounds, folder, uploaded, created_at
		FROM results
		ORDER BY score DESC, id ASC
		LIMIT ?`, clampLimit(limit))
}

func (s *SQLite) query(ctx context.Context, q string, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var created string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Score, &r.Rounds, &r.Folder, &r.Uploaded, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
