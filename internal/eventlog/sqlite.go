package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"hubhook/internal/channel"
	"hubhook/internal/security"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the event log in SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite event log at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; appends are serialized by the pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if dbPath != ":memory:" {
		if err := os.Chmod(dbPath, security.PermDataFile); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set database permissions: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// initSchema creates the database tables and indexes
func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			received_at TEXT NOT NULL,
			body TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_events_source_seq
		ON events(source, seq DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Append records an event
func (s *SQLiteStore) Append(ctx context.Context, record Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, source, received_at, body)
		VALUES (?, ?, ?, ?)
	`,
		record.ID,
		string(record.Source),
		record.ReceivedAt.UTC().Format(time.RFC3339Nano),
		string(record.Body),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event record: %w", err)
	}

	return nil
}

// List returns all events, newest first
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, received_at, body
		FROM events
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Count returns the number of stored events
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// scanRecord scans a database row into a Record
func scanRecord(rows *sql.Rows) (*Record, error) {
	var record Record
	var source, receivedAtStr, body string

	if err := rows.Scan(&record.ID, &source, &receivedAtStr, &body); err != nil {
		return nil, err
	}

	receivedAt, err := time.Parse(time.RFC3339Nano, receivedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse received_at timestamp: %w", err)
	}

	record.Source = channel.Channel(source)
	record.ReceivedAt = receivedAt
	record.Body = json.RawMessage(body)

	return &record, nil
}
