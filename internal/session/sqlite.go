package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists session state in a small local database, the
// console's stand-in for browser storage.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the state database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close()
		return nil, fmt.Errorf("chmod state db: %w", err)
	}
	store := NewSQLiteStore(db)
	if err := store.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an already-open database handle. Schema setup is the
// caller's responsibility; OpenSQLite is the usual entry point.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS session_state (k TEXT PRIMARY KEY, v TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS preferences (k TEXT PRIMARY KEY, v TEXT NOT NULL);
`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) SaveSession(ctx context.Context, token string, principal []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer tx.Rollback()
	const upsert = `INSERT INTO session_state(k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v=excluded.v`
	if _, err := tx.ExecContext(ctx, upsert, "token", token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, "principal", string(principal)); err != nil {
		return fmt.Errorf("save principal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSession(ctx context.Context) (string, []byte, bool, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM session_state WHERE k = ?`, "token").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("load token: %w", err)
	}
	var principal string
	err = s.db.QueryRowContext(ctx, `SELECT v FROM session_state WHERE k = ?`, "principal").Scan(&principal)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("load principal: %w", err)
	}
	if token == "" || principal == "" {
		return "", nil, false, nil
	}
	return token, []byte(principal), true, nil
}

func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_state`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetPreference(ctx context.Context, key, value string) error {
	const upsert = `INSERT INTO preferences(k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v=excluded.v`
	if _, err := s.db.ExecContext(ctx, upsert, key, value); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Preference(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM preferences WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load preference %s: %w", key, err)
	}
	return v, true, nil
}
