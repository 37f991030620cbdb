package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrsteele09/member-portal/store"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

const schema = `CREATE TABLE IF NOT EXISTS session_kv (
	origin TEXT NOT NULL,
	key    TEXT NOT NULL,
	value  TEXT NOT NULL,
	PRIMARY KEY (origin, key)
)`

// Store keeps persisted session keys in a SQLite table, one row per (origin, key).
type Store struct {
	db     *sql.DB
	origin string
	log    zerolog.Logger
}

// Open opens (or creates) a SQLite database at dbPath and prepares the schema.
// Use ":memory:" for an in-memory database (useful in tests).
func Open(ctx context.Context, dbPath, origin string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session_kv: %w", err)
	}

	return &Store{
		db:     db,
		origin: origin,
		log:    log.With().Str("component", "sqlitestore").Logger(),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.log.Debug().Str("op", "select").Str("key", key).Msg("sql")

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_kv WHERE origin = ? AND key = ?`, s.origin, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.log.Debug().Str("op", "upsert").Str("key", key).Msg("sql")

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_kv (origin, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (origin, key) DO UPDATE SET value = excluded.value`,
		s.origin, key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	s.log.Debug().Str("op", "delete").Str("key", key).Msg("sql")

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE origin = ? AND key = ?`, s.origin, key,
	); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Clear deletes the keys inside one transaction.
func (s *Store) Clear(ctx context.Context, keys ...string) error {
	s.log.Debug().Str("op", "clear").Strs("keys", keys).Msg("sql")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_kv WHERE origin = ? AND key = ?`, s.origin, k,
		); err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}
