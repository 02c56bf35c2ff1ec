package mock

import (
	"context"
	"encoding/json"

	"github.com/pzhu/bookfetch"
)

var _ bookfetch.GroupSource = (*GroupSource)(nil)

// GroupSource is a mock implementation of bookfetch.GroupSource.
type GroupSource struct {
	FetchGroupFn func(ctx context.Context, ids string, packaged bool) (json.RawMessage, error)
}

func (s *GroupSource) FetchGroup(ctx context.Context, ids string, packaged bool) (json.RawMessage, error) {
	return s.FetchGroupFn(ctx, ids, packaged)
}

var _ bookfetch.CommentFetcher = (*CommentFetcher)(nil)

// CommentFetcher is a mock implementation of bookfetch.CommentFetcher.
type CommentFetcher struct {
	FetchCommentsFn func(ctx context.Context, bookID, chapterID string) (json.RawMessage, error)
}

func (f *CommentFetcher) FetchComments(ctx context.Context, bookID, chapterID string) (json.RawMessage, error) {
	return f.FetchCommentsFn(ctx, bookID, chapterID)
}
