package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pzhu/bookfetch"
)

// Compile-time interface verification.
var _ bookfetch.RunStore = (*RunService)(nil)

// RunService implements bookfetch.RunStore using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a completed download run. An empty ID is assigned.
func (s *RunService) CreateRun(ctx context.Context, run *bookfetch.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, book_id, book_name, saved, failed, digest, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.BookID, run.BookName, run.Saved, run.Failed, run.Digest,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339))

	return err
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter bookfetch.RunFilter) ([]*bookfetch.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, book_id, book_name, saved, failed, digest, started_at, finished_at FROM runs WHERE 1=1")

	if filter.BookID != nil {
		query.WriteString(" AND book_id = ?")
		args = append(args, *filter.BookID)
	}

	query.WriteString(" ORDER BY started_at DESC, id DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*bookfetch.Run
	for rows.Next() {
		var run bookfetch.Run
		var startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.BookID, &run.BookName, &run.Saved, &run.Failed,
			&run.Digest, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
