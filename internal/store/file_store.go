package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ancients-collective/vigia/internal/types"
)

const indexPrefix = "index_"

// FileStore keeps each report as an immutable {id}.json artifact plus a
// per-user index file with the history summaries. Artifacts are created
// with O_EXCL so an id can never be written twice.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore opens (and creates if needed) the storage directory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) artifactPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) indexPath(userID string) string {
	return filepath.Join(s.dir, indexPrefix+sanitizeUserID(userID)+".json")
}

// sanitizeUserID maps a user id onto a filesystem-safe index file name.
func sanitizeUserID(userID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return '_'
		}
	}, userID)
}

// Save writes the artifact and then updates the owner's index. The id
// is reserved first with an exclusive create, so a duplicate Save fails
// with ErrConflict before touching anything. A failure while writing
// removes the reservation so no partial artifact is left behind.
func (s *FileStore) Save(ctx context.Context, report *types.DiagnosticReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.artifactPath(report.ID)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("report %s: %w", report.ID, ErrConflict)
		}
		return fmt.Errorf("creating artifact: %w", err)
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		_, err = f.Write(body)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("writing artifact %s: %w", report.ID, err)
	}

	if err := s.appendIndex(report); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (s *FileStore) appendIndex(report *types.DiagnosticReport) error {
	path := s.indexPath(report.UserID)
	summaries, err := readIndexFile(path)
	if err != nil {
		return err
	}

	summaries = append(summaries, types.NewSummary(report))
	sortSummaries(summaries)

	body, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

// GetByID loads one full report. Ownership is enforced only when a
// userID is given; an empty userID reads any report.
func (s *FileStore) GetByID(ctx context.Context, userID, id string) (*types.DiagnosticReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(s.artifactPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading artifact %s: %w", id, err)
	}

	var report types.DiagnosticReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decoding artifact %s: %w", id, err)
	}
	if userID != "" && report.UserID != userID {
		return nil, fmt.Errorf("report %s: %w", id, ErrForbidden)
	}
	return &report, nil
}

// GetHistory returns the user's summaries, newest first.
func (s *FileStore) GetHistory(ctx context.Context, userID string, limit int) ([]types.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summaries, err := readIndexFile(s.indexPath(userID))
	if err != nil {
		return nil, err
	}
	sortSummaries(summaries)

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// GetAll merges every user index, newest first.
func (s *FileStore) GetAll(ctx context.Context) ([]types.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(s.dir, indexPrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}

	all := []types.Summary{}
	for _, path := range paths {
		summaries, err := readIndexFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, summaries...)
	}
	sortSummaries(all)
	return all, nil
}

// GetMetrics aggregates the user's full history, or every user's when
// userID is empty.
func (s *FileStore) GetMetrics(ctx context.Context, userID string) (*types.Metrics, error) {
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

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

func readIndexFile(path string) ([]types.Summary, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []types.Summary{}, nil
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var summaries []types.Summary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", filepath.Base(path), err)
	}
	return summaries, nil
}

// sortSummaries orders newest first, breaking timestamp ties by id so
// the ordering is stable across backends.
func sortSummaries(summaries []types.Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Timestamp.Equal(summaries[j].Timestamp) {
			return summaries[i].ID > summaries[j].ID
		}
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
}
