package mock

import (
	"context"

	"github.com/pzhu/bookfetch"
)

var _ bookfetch.DirectoryService = (*DirectoryService)(nil)

// DirectoryService is a mock implementation of bookfetch.DirectoryService.
type DirectoryService struct {
	FetchDirectoryFn func(ctx context.Context, bookID string) (*bookfetch.Directory, error)
}

func (s *DirectoryService) FetchDirectory(ctx context.Context, bookID string) (*bookfetch.Directory, error) {
	return s.FetchDirectoryFn(ctx, bookID)
}
