package bookfetch

import (
	"context"
	"time"
)

// Run records the outcome of one completed download run.
type Run struct {
	ID         string    `json:"id"`
	BookID     string    `json:"bookId"`
	BookName   string    `json:"bookName"`
	Saved      int       `json:"saved"`
	Failed     int       `json:"failed"`
	Digest     string    `json:"digest"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.BookID == "" {
		return Errorf(EINVALID, "run book ID required")
	}
	if r.Saved < 0 || r.Failed < 0 {
		return Errorf(EINVALID, "run counts must not be negative")
	}
	return nil
}

// RunFilter selects runs for FindRuns.
type RunFilter struct {
	BookID *string

	Limit int
}

// RunStore persists run history.
type RunStore interface {
	// CreateRun records a completed run. An empty ID is assigned.
	CreateRun(ctx context.Context, run *Run) error

	// FindRuns retrieves runs matching the filter, most recent first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}
