package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB-backed AuditStore: pooled connections
// sized for a shared production deployment rather than SQLite's single
// writer.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore opens (and migrates) a MySQL-backed audit trail using dsn,
// e.g. "user:pass@tcp(localhost:3306)/navchoreo?parseTime=true".
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m := &MySQLStore{db: db}
	if err := m.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return m, nil
}

func (m *MySQLStore) createTables(ctx context.Context) error {
	auditTable := `
		CREATE TABLE IF NOT EXISTS nav_audit (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			session_id VARCHAR(255) NOT NULL,
			sequence INT NOT NULL,
			kind VARCHAR(32) NOT NULL,
			name VARCHAR(64) NOT NULL,
			route_key VARCHAR(255) NOT NULL,
			sender VARCHAR(32) NOT NULL,
			detail JSON NOT NULL,
			recorded_at TIMESTAMP(6) NOT NULL,
			INDEX idx_session_sequence (session_id, sequence)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := m.db.ExecContext(ctx, auditTable); err != nil {
		return fmt.Errorf("failed to create nav_audit table: %w", err)
	}
	return nil
}

// Append inserts a record into nav_audit.
func (m *MySQLStore) Append(ctx context.Context, record Record) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("audit store is closed")
	}
	m.mu.RUnlock()

	query := `
		INSERT INTO nav_audit (session_id, sequence, kind, name, route_key, sender, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := m.db.ExecContext(ctx, query,
		record.SessionID, record.Sequence, record.Kind, record.Name,
		record.RouteKey, record.Sender, record.Detail,
		record.Timestamp.Format("2006-01-02 15:04:05.999999"))
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// History retrieves up to limit records for sessionID, oldest first.
func (m *MySQLStore) History(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, fmt.Errorf("audit store is closed")
	}
	m.mu.RUnlock()

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

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var recordedAt time.Time
		r.SessionID = sessionID
		if err := rows.Scan(&r.Sequence, &r.Kind, &r.Name, &r.RouteKey, &r.Sender, &r.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		r.Timestamp = recordedAt
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return records, nil
}

// Close closes the underlying connection pool. Safe to call more than once.
func (m *MySQLStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}
