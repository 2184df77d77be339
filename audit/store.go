// Package audit persists the catalog audit trail: status changes and forced
// reloads, journaled to SQLite so the record survives snapshot swaps.
package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/openmoniker/openmoniker/errors"
)

// Entry is one audit record for a catalog path
type Entry struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"` // RFC 3339, UTC
	Path      string  `json:"path"`
	Action    string  `json:"action"` // status_changed, catalog_reloaded, ...
	Actor     string  `json:"actor"`
	OldValue  *string `json:"old_value,omitempty"`
	NewValue  *string `json:"new_value,omitempty"`
	Details   *string `json:"details,omitempty"`
}

// Store is a SQLite-backed audit log
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// Open opens (or creates) the audit database at path with the usual SQLite
// settings: WAL mode for concurrent reads during writes, busy timeout so
// writers queue instead of failing.
func Open(path string, logger *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open audit database")
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Infow("Audit store opened", "path", path)
	}
	return store, nil
}

// NewWithDB wraps an existing database handle (used in tests)
func NewWithDB(db *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{db: db, logger: logger}
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records an audit entry. The ID and timestamp are filled when absent.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if entry.Actor == "" {
		entry.Actor = "anonymous"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_entries (id, timestamp, path, action, actor, old_value, new_value, details)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp, entry.Path, entry.Action, entry.Actor,
		entry.OldValue, entry.NewValue, entry.Details,
	)
	if err != nil {
		return errors.Wrap(err, "append audit entry")
	}

	if s.logger != nil {
		s.logger.Debugw("Audit entry recorded",
			"path", entry.Path,
			"action", entry.Action,
			"actor", entry.Actor,
		)
	}
	return nil
}

// ForPath returns entries for a path, newest first, capped at limit
func (s *Store) ForPath(ctx context.Context, path string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, path, action, actor, old_value, new_value, details
		 FROM audit_entries WHERE path = ? ORDER BY timestamp DESC, id LIMIT ?`,
		path, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query audit entries")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Path, &e.Action, &e.Actor, &e.OldValue, &e.NewValue, &e.Details); err != nil {
			return nil, errors.Wrap(err, "scan audit entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
