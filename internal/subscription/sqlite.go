package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const settingDefaultSubreddit = "default_subreddit"

// SQLiteStore keeps subscriptions in an SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes
	// writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subscriptions (
		name TEXT PRIMARY KEY COLLATE NOCASE,
		pending INTEGER NOT NULL DEFAULT 0,
		hidden INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Search matches term as a case-insensitive substring of the name.
func (s *SQLiteStore) Search(ctx context.Context, term string, includeHidden bool) ([]Entry, error) {
	query := `SELECT name, pending, hidden FROM subscriptions
		WHERE name LIKE ? ESCAPE '\'`
	if !includeHidden {
		query += ` AND hidden = 0`
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := s.conn.QueryContext(ctx, query, "%"+escapeLike(term)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var pending int
		if err := rows.Scan(&e.Name, &pending, &e.Hidden); err != nil {
			return nil, err
		}
		e.Pending = PendingState(pending)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Default returns the stored default, or "" when none is set.
func (s *SQLiteStore) Default(ctx context.Context) (string, error) {
	var v string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingDefaultSubreddit).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetDefault points the default at name.
func (s *SQLiteStore) SetDefault(ctx context.Context, name string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingDefaultSubreddit, name)
	return err
}

// ResetDefault removes the default pointer.
func (s *SQLiteStore) ResetDefault(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, settingDefaultSubreddit)
	return err
}

// SetHidden updates the hidden flag of name.
func (s *SQLiteStore) SetHidden(ctx context.Context, name string, hidden bool) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE subscriptions SET hidden = ? WHERE name = ?`, hidden, name)
	if err != nil {
		return err
	}
	return requireAffected(res, name)
}

// Subscribe inserts name; subscribing twice is a no-op.
func (s *SQLiteStore) Subscribe(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("subscribe: empty name")
	}
	_, err := s.conn.ExecContext(ctx, `INSERT OR IGNORE INTO subscriptions (name) VALUES (?)`, name)
	return err
}

// Unsubscribe deletes name.
func (s *SQLiteStore) Unsubscribe(ctx context.Context, name string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM subscriptions WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return requireAffected(res, name)
}

func requireAffected(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
