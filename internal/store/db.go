// internal/store/db.go
//
// Database helpers for the score ledger.
// Responsibilities:
//   - Opening SQLite with safe defaults (busy timeout, WAL for files).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//
// The default DSN is an in-memory shared-cache database: the ledger lives
// as long as the process and is gone after a power cycle.

package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/assets"
)

// MemoryDSN keeps the ledger in RAM, shared by every pooled connection.
const MemoryDSN = "file:simon?mode=memory&cache=shared"

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// OpenDB opens (and creates if missing) a SQLite database.
func OpenDB(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	mem := isMemory(dsn)
	if !mem {
		path := strings.TrimPrefix(dsn, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	params := "_busy_timeout=5000"
	if !mem {
		params += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn+sep+params)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every new connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations in lexical order, skipping files
// already recorded in _migrations. Each file runs in its own transaction.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := assets.FS.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}
