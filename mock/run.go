package mock

import (
	"context"

	"github.com/pzhu/bookfetch"
)

var _ bookfetch.RunStore = (*RunStore)(nil)

// RunStore is a mock implementation of bookfetch.RunStore.
type RunStore struct {
	CreateRunFn func(ctx context.Context, run *bookfetch.Run) error
	FindRunsFn  func(ctx context.Context, filter bookfetch.RunFilter) ([]*bookfetch.Run, error)
}

func (s *RunStore) CreateRun(ctx context.Context, run *bookfetch.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunStore) FindRuns(ctx context.Context, filter bookfetch.RunFilter) ([]*bookfetch.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
