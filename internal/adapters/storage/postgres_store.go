// Package storage implements ports.ReportArchive for PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/karshi-k/agentic-honeypot/internal/ports"
)

// PostgresArchive durably records finalize reports and their delivery
// outcome. Sessions themselves stay in memory; the archive is the audit
// trail that survives a restart, and the place to mine undelivered reports
// from (delivery is at-most-once, so a failed row is never retried by the
// process that wrote it).
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive opens a connection pool to the given database.
func NewPostgresArchive(connStr string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Archive writes are rare (one per finalized session); a small pool
	// is plenty.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresArchive{db: db}, nil
}

// Close closes the database connection.
func (a *PostgresArchive) Close() error {
	return a.db.Close()
}

// InitSchema creates the archive table if it doesn't exist.
// In production, use proper migration tools.
func (a *PostgresArchive) InitSchema() error {
	schema := `
	-- One row per finalized session. The payload is stored as JSONB in the
	-- exact shape that was (or would have been) delivered to the collector,
	-- so a failed delivery can be replayed by an operator verbatim.
	--
	-- Production considerations:
	-- - Retention: finalize reports contain scammer PII-adjacent artifacts;
	--   a retention window and partitioning by created_at would be needed.
	-- - An undelivered-report sweeper could re-post rows with
	--   delivered = FALSE, turning at-most-once into at-least-once. That is
	--   an explicit policy change, not something this process does.
	CREATE TABLE IF NOT EXISTS finalize_reports (
		id UUID PRIMARY KEY,
		session_id VARCHAR(128) NOT NULL,
		payload JSONB NOT NULL,
		delivered BOOLEAN NOT NULL,
		delivery_error TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Investigation entry point: "show me everything for this session"
	CREATE INDEX IF NOT EXISTS idx_finalize_reports_session ON finalize_reports(session_id);
	-- Operator sweep: undelivered reports, newest first
	CREATE INDEX IF NOT EXISTS idx_finalize_reports_undelivered ON finalize_reports(delivered, created_at DESC);
	`

	_, err := a.db.Exec(schema)
	return err
}

// SaveReport inserts one archived report row.
func (a *PostgresArchive) SaveReport(ctx context.Context, record *ports.ReportRecord) error {
	payload, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	query := `
		INSERT INTO finalize_reports (id, session_id, payload, delivered, delivery_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = a.db.ExecContext(ctx, query,
		record.ID, record.SessionID, payload,
		record.Delivered, nullableString(record.DeliveryError), record.CreatedAt,
	)
	return err
}

// GetUndeliveredReports returns archived reports whose delivery failed,
// newest first, for operator replay tooling.
func (a *PostgresArchive) GetUndeliveredReports(ctx context.Context, limit int) ([]ports.ReportRecord, error) {
	query := `
		SELECT id, session_id, payload, delivered, COALESCE(delivery_error, ''), created_at
		FROM finalize_reports
		WHERE delivered = FALSE
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := a.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ports.ReportRecord
	for rows.Next() {
		var (
			record  ports.ReportRecord
			payload []byte
		)
		if err := rows.Scan(&record.ID, &record.SessionID, &payload,
			&record.Delivered, &record.DeliveryError, &record.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &record.Report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload for report %s: %w", record.ID, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
