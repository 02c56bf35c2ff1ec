// Package slog provides logging decorators for bookfetch services.
package slog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pzhu/bookfetch"
)

// Ensure LoggingGroupSource implements bookfetch.GroupSource.
var _ bookfetch.GroupSource = (*LoggingGroupSource)(nil)

// LoggingGroupSource wraps a GroupSource with debug logging.
type LoggingGroupSource struct {
	next   bookfetch.GroupSource
	logger *slog.Logger
}

// NewLoggingGroupSource creates a new LoggingGroupSource.
func NewLoggingGroupSource(next bookfetch.GroupSource, logger *slog.Logger) *LoggingGroupSource {
	return &LoggingGroupSource{next: next, logger: logger}
}

// FetchGroup delegates to the wrapped source and logs the operation.
func (s *LoggingGroupSource) FetchGroup(ctx context.Context, ids string, packaged bool) (raw json.RawMessage, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("group fetch",
			"ids", ids,
			"packaged", packaged,
			"bytes", len(raw),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchGroup(ctx, ids, packaged)
}
