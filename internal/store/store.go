// Package store persists diagnostic reports. Two backends are provided:
// a directory of immutable JSON artifacts with per-user index files, and
// an embedded SQLite database. Reports are write-once: a Save under an
// existing id fails with ErrConflict and never mutates stored data.
package store

import (
	"context"
	"errors"

	"github.com/ancients-collective/vigia/internal/types"
)

var (
	// ErrNotFound reports that no report exists under the given id.
	ErrNotFound = errors.New("report not found")

	// ErrForbidden reports that the report exists but belongs to a
	// different user.
	ErrForbidden = errors.New("report belongs to another user")

	// ErrConflict reports an attempt to save under an id that is
	// already taken.
	ErrConflict = errors.New("report id already exists")
)

// Repository is the persistence contract for diagnostic reports.
type Repository interface {
	// Save persists a report as an immutable artifact and updates the
	// owner's history index. Saving an id twice returns ErrConflict.
	Save(ctx context.Context, report *types.DiagnosticReport) error

	// GetByID loads a full report. It returns ErrNotFound for unknown
	// ids and ErrForbidden when the report belongs to another user. An
	// empty userID skips the ownership check and reads any report.
	GetByID(ctx context.Context, userID, id string) (*types.DiagnosticReport, error)

	// GetHistory returns the user's report summaries, most recent
	// first. A limit of zero or less means no limit.
	GetHistory(ctx context.Context, userID string, limit int) ([]types.Summary, error)

	// GetAll returns summaries across all users, most recent first.
	GetAll(ctx context.Context) ([]types.Summary, error)

	// GetMetrics aggregates the user's persisted reports, or every
	// user's when userID is empty.
	GetMetrics(ctx context.Context, userID string) (*types.Metrics, error)

	// Close releases backend resources.
	Close() error
}

// metricsFromSummaries folds an already newest-first summary list into
// the aggregate view both backends expose.
func metricsFromSummaries(summaries []types.Summary) *types.Metrics {
	m := &types.Metrics{TotalReports: len(summaries)}
	if len(summaries) == 0 {
		return m
	}

	var scoreSum int
	for _, s := range summaries {
		scoreSum += s.Score
		m.ProblemsTotal += s.ProblemsCount
	}
	m.AverageScore = float64(scoreSum) / float64(len(summaries))

	latest := summaries[0]
	m.LastScore = latest.Score
	m.LastStatus = latest.SystemStatus
	m.LastRunAt = latest.Timestamp
	return m
}
