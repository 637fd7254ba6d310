package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed AuditStore: single-writer connection
// pool, WAL mode for concurrent reads, auto-migrated schema.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore opens (and migrates) a SQLite-backed audit trail at path.
// Use ":memory:" for a throwaway in-process database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	auditTable := `
		CREATE TABLE IF NOT EXISTS nav_audit (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			route_key TEXT NOT NULL,
			sender TEXT NOT NULL,
			detail TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, auditTable); err != nil {
		return fmt.Errorf("failed to create nav_audit table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_nav_audit_session ON nav_audit(session_id, sequence)"); err != nil {
		return fmt.Errorf("failed to create idx_nav_audit_session: %w", err)
	}
	return nil
}

// Append inserts a record into nav_audit.
func (s *SQLiteStore) Append(ctx context.Context, record Record) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("audit store is closed")
	}
	s.mu.RUnlock()

	query := `
		INSERT INTO nav_audit (session_id, sequence, kind, name, route_key, sender, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.SessionID, record.Sequence, record.Kind, record.Name,
		record.RouteKey, record.Sender, record.Detail,
		record.Timestamp.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// History retrieves up to limit records for sessionID, oldest first.
func (s *SQLiteStore) History(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("audit store is closed")
	}
	s.mu.RUnlock()

	query := `
		SELECT sequence, kind, name, route_key, sender, detail, recorded_at
		FROM nav_audit
		WHERE session_id = ?
		ORDER BY sequence ASC
	`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var recordedAt string
		r.SessionID = sessionID
		if err := rows.Scan(&r.Sequence, &r.Kind, &r.Name, &r.RouteKey, &r.Sender, &r.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return records, nil
}

// Close closes the underlying database connection. Safe to call more than
// once.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
