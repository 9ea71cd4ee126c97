// Package persistence provides the durable slot for browser sessions.
// Each slot maps a session id (cookie value) to the opaque backend token, so sessions survive
// restarts of the dashboard process. It uses SQLite in WAL mode.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotFound returned when no slot exists for the requested id
var ErrNotFound = errors.New("not found")

// Slot is a persisted session reference
type Slot struct {
	ID        string
	Token     string
	CreatedAt time.Time
}

// slotRow is the database representation, timestamps stored as unix seconds
type slotRow struct {
	ID        string `db:"id"`
	Token     string `db:"token"`
	CreatedAt int64  `db:"created_at"`
}

func (r slotRow) slot() Slot {
	return Slot{ID: r.ID, Token: r.Token, CreatedAt: time.Unix(r.CreatedAt, 0)}
}

// SQLiteStore implements session slots using SQLite
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and initializes schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer, concurrent session restore would get SQLITE_BUSY otherwise

	// enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to set WAL mode: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (also failed to close db: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initialize creates the database schema
func (s *SQLiteStore) initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a slot
func (s *SQLiteStore) Save(slot Slot) error {
	row := slotRow{ID: slot.ID, Token: slot.Token, CreatedAt: slot.CreatedAt.Unix()}
	if _, err := s.db.NamedExec(`INSERT OR REPLACE INTO sessions (id, token, created_at)
		VALUES (:id, :token, :created_at)`, row); err != nil {
		return fmt.Errorf("failed to save session %s: %w", slot.ID, err)
	}
	return nil
}

// Load retrieves a slot by id, returns ErrNotFound if missing
func (s *SQLiteStore) Load(id string) (Slot, error) {
	var row slotRow
	err := s.db.Get(&row, `SELECT id, token, created_at FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, ErrNotFound
	}
	if err != nil {
		return Slot{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return row.slot(), nil
}

// List returns all slots, oldest first
func (s *SQLiteStore) List() ([]Slot, error) {
	rows := []slotRow{}
	if err := s.db.Select(&rows, `SELECT id, token, created_at FROM sessions ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	res := make([]Slot, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.slot())
	}
	return res, nil
}

// Delete removes a slot, missing slot is not an error
func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

// DeleteOlderThan removes all slots created before the cutoff and returns how many were removed
func (s *SQLiteStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Printf("[WARN] can't get number of deleted sessions: %v", err)
		return 0, nil
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
