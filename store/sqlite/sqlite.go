/*
Package sqlite provides a SQLite-backed implementation of session.Store.

PURPOSE:
  Keeps computed upload sessions on disk so they survive a server restart
  within their TTL, and so several server processes can share one file.

KEY TABLES:
  sessions:      one row per upload (source file name, header, TTL bounds)
  session_rows:  computed rows, ordered by position, cascade-deleted with
                 their session

ENCODING:
  Cells, records and breakdowns are stored as JSON text. Timestamps are
  stored as Unix nanoseconds so expiry comparisons are numeric.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/sessions.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := session.NewService(store, calc, cfg)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - session/session.go: Store interface
  - session/memory: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/shift-pay/session"
)

// Store implements session.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ session.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		header_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at
		ON sessions(expires_at);

	CREATE TABLE IF NOT EXISTS session_rows (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		line INTEGER NOT NULL,
		cells_json TEXT NOT NULL,
		record_json TEXT NOT NULL,
		breakdown_json TEXT NOT NULL,
		PRIMARY KEY (session_id, position)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Save inserts or replaces a session and all of its rows atomically.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, err := json.Marshal(sess.Header)
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_rows WHERE session_id = ?", sess.ID); err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (id, source_name, header_json, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_name = excluded.source_name,
			header_json = excluded.header_json,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`
	if _, err := tx.ExecContext(ctx, query,
		sess.ID, sess.SourceName, string(header),
		sess.CreatedAt.UnixNano(), sess.ExpiresAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO session_rows (session_id, position, line, cells_json, record_json, breakdown_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range sess.Rows {
		cells, err := json.Marshal(row.Cells)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", row.Line, err)
		}
		record, err := json.Marshal(row.Record)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", row.Line, err)
		}
		breakdown, err := json.Marshal(row.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", row.Line, err)
		}
		if _, err := stmt.ExecContext(ctx, sess.ID, i, row.Line, string(cells), string(record), string(breakdown)); err != nil {
			return fmt.Errorf("failed to save row %d: %w", row.Line, err)
		}
	}

	return tx.Commit()
}

// Get loads a session with its rows in upload order.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sess                 session.Session
		header               string
		createdAt, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, source_name, header_json, created_at, expires_at FROM sessions WHERE id = ?",
		id,
	).Scan(&sess.ID, &sess.SourceName, &header, &createdAt, &expiresAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(header), &sess.Header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	sess.CreatedAt = time.Unix(0, createdAt)
	sess.ExpiresAt = time.Unix(0, expiresAt)

	rows, err := s.db.QueryContext(ctx, `
		SELECT line, cells_json, record_json, breakdown_json
		FROM session_rows
		WHERE session_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row                      session.Row
			cells, record, breakdown string
		)
		if err := rows.Scan(&row.Line, &cells, &record, &breakdown); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cells), &row.Cells); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", row.Line, err)
		}
		if err := json.Unmarshal([]byte(record), &row.Record); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", row.Line, err)
		}
		if err := json.Unmarshal([]byte(breakdown), &row.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", row.Line, err)
		}
		sess.Rows = append(sess.Rows, row)
	}
	return &sess, rows.Err()
}

// Delete removes a session and its rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// DeleteExpired removes every session whose expiry is not after now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UnixNano())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"session_rows", "sessions"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// CountRows returns the number of stored rows across all sessions.
func (s *Store) CountRows(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM session_rows").Scan(&n)
	return n, err
}
