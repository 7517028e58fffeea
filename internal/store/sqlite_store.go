package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ancients-collective/vigia/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS diagnostics (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	timestamp      TEXT NOT NULL,
	score          INTEGER NOT NULL,
	system_status  TEXT NOT NULL,
	problems_count INTEGER NOT NULL,
	body           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_diagnostics_user_ts ON diagnostics (user_id, timestamp DESC);
`

// SQLiteStore keeps reports in an embedded SQLite database. The summary
// columns are denormalized from the report so history and metrics
// queries never decode full report bodies.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// The modernc driver is not safe for concurrent writers on one
	// connection pool without serialization.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts the report inside a transaction, rejecting duplicate ids
// with ErrConflict.
func (s *SQLiteStore) Save(ctx context.Context, report *types.DiagnosticReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM diagnostics WHERE id = ?`, report.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("report %s: %w", report.ID, ErrConflict)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking report id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO diagnostics (id, user_id, timestamp, score, system_status, problems_count, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.UserID,
		report.Timestamp.UTC().Format(time.RFC3339Nano),
		report.Score,
		string(report.SystemStatus),
		len(report.Problems),
		string(body),
	)
	if err != nil {
		return fmt.Errorf("inserting report %s: %w", report.ID, err)
	}
	return tx.Commit()
}

// GetByID loads one full report. Ownership is enforced only when a
// userID is given; an empty userID reads any report.
func (s *SQLiteStore) GetByID(ctx context.Context, userID, id string) (*types.DiagnosticReport, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM diagnostics WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}

	var report types.DiagnosticReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	if userID != "" && report.UserID != userID {
		return nil, fmt.Errorf("report %s: %w", id, ErrForbidden)
	}
	return &report, nil
}

// GetHistory returns the user's summaries, newest first.
func (s *SQLiteStore) GetHistory(ctx context.Context, userID string, limit int) ([]types.Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, timestamp, score, system_status, problems_count
		 FROM diagnostics WHERE user_id = ?
		 ORDER BY timestamp DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// GetAll returns summaries across all users, newest first.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]types.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, timestamp, score, system_status, problems_count
		 FROM diagnostics ORDER BY timestamp DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// GetMetrics aggregates the user's full history, or every user's when
// userID is empty.
func (s *SQLiteStore) GetMetrics(ctx context.Context, userID string) (*types.Metrics, error) {
	var (
		summaries []types.Summary
		err       error
	)
	if userID == "" {
		summaries, err = s.GetAll(ctx)
	} else {
		summaries, err = s.GetHistory(ctx, userID, 0)
	}
	if err != nil {
		return nil, err
	}
	return metricsFromSummaries(summaries), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanSummaries(rows *sql.Rows) ([]types.Summary, error) {
	summaries := []types.Summary{}
	for rows.Next() {
		var (
			s  types.Summary
			ts string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &ts, &s.Score, &s.SystemStatus, &s.ProblemsCount); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
		}
		s.Timestamp = parsed
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summaries: %w", err)
	}
	return summaries, nil
}
