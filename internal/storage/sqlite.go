package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/quire/internal/apperr"
)

const slotSchemaSQL = `
CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteSlot implements Slot as one row of a SQLite table.
type SQLiteSlot struct {
	conn *sql.DB
	name string
}

// OpenSQLiteSlot opens (or creates) the database at dsn and applies the schema.
func OpenSQLiteSlot(dsn, name string) (*SQLiteSlot, error) {
	if name == "" {
		return nil, fmt.Errorf("storage: slot name is required")
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(slotSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLiteSlot{conn: conn, name: name}, nil
}

func (s *SQLiteSlot) Name() string { return s.name }

// Read returns the stored row data.
func (s *SQLiteSlot) Read() ([]byte, error) {
	var data []byte
	err := s.conn.QueryRow(`SELECT data FROM slots WHERE name = ?`, s.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: read %s: %w", s.name, apperr.ErrSlotEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w: %w", s.name, apperr.ErrStorageUnavailable, err)
	}
	return data, nil
}

// Write upserts the row in a single statement.
func (s *SQLiteSlot) Write(data []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO slots (name, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at
	`, s.name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: write %s: %w: %w", s.name, apperr.ErrStorageUnavailable, err)
	}
	return nil
}

// Clear deletes the row.
func (s *SQLiteSlot) Clear() error {
	if _, err := s.conn.Exec(`DELETE FROM slots WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("storage: clear %s: %w: %w", s.name, apperr.ErrStorageUnavailable, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteSlot) Close() error {
	return s.conn.Close()
}
