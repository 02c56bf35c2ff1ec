package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pzhu/bookfetch"
)

// Ensure LoggingDirectoryService implements bookfetch.DirectoryService.
var _ bookfetch.DirectoryService = (*LoggingDirectoryService)(nil)

// LoggingDirectoryService wraps a DirectoryService with debug logging.
type LoggingDirectoryService struct {
	next   bookfetch.DirectoryService
	logger *slog.Logger
}

// NewLoggingDirectoryService creates a new LoggingDirectoryService.
func NewLoggingDirectoryService(next bookfetch.DirectoryService, logger *slog.Logger) *LoggingDirectoryService {
	return &LoggingDirectoryService{next: next, logger: logger}
}

// FetchDirectory delegates to the wrapped service and logs the operation.
func (s *LoggingDirectoryService) FetchDirectory(ctx context.Context, bookID string) (dir *bookfetch.Directory, err error) {
	defer func(begin time.Time) {
		chapters := 0
		if dir != nil {
			chapters = len(dir.Chapters)
		}
		s.logger.Info("directory fetch",
			"book_id", bookID,
			"chapters", chapters,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchDirectory(ctx, bookID)
}
