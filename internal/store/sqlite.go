package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/smartresume/internal/model"
	"github.com/amishk599/smartresume/internal/session"
)

var _ session.Store = (*SQLiteStore)(nil)

// SQLiteStore keeps session form state in a SQLite database. The table is
// emptied on open so no session outlives the process that created it.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// sessions table exists, and clears it. ":memory:" keeps everything in RAM.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	if _, err := db.Exec("DELETE FROM sessions"); err != nil {
		db.Close()
		return nil, fmt.Errorf("clearing stale sessions: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Load returns the stored form for id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (model.FormState, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT state FROM sessions WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.FormState{}, false, nil
	}
	if err != nil {
		return model.FormState{}, false, fmt.Errorf("loading session %s: %w", id, err)
	}

	var form model.FormState
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return model.FormState{}, false, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return form, true, nil
}

// Save upserts the form for id and bumps its idle clock.
func (s *SQLiteStore) Save(ctx context.Context, id string, form model.FormState) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		id, string(raw), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

// Delete removes the session. Deleting an unknown id is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Cleanup deletes sessions idle for longer than olderThan.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up sessions older than %v: %w", olderThan, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleaned sessions: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
