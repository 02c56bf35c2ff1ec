package bookfetch

import (
	"context"
	"encoding/json"
)

// GroupSource issues one upstream batch request for a comma-joined list of
// chapter IDs and returns the raw JSON payload. A rate-limited primary
// source signals throttling with an ECOOLDOWN-coded error; the caller is
// expected to retry after a delay.
type GroupSource interface {
	FetchGroup(ctx context.Context, ids string, packaged bool) (json.RawMessage, error)
}

// GroupSourceFunc adapts a function to the GroupSource interface.
type GroupSourceFunc func(ctx context.Context, ids string, packaged bool) (json.RawMessage, error)

// FetchGroup calls f.
func (f GroupSourceFunc) FetchGroup(ctx context.Context, ids string, packaged bool) (json.RawMessage, error) {
	return f(ctx, ids, packaged)
}

// ChapterContent is the usable content extracted for one chapter.
type ChapterContent struct {
	Title string
	Text  string
}

// ContentExtractor maps a raw batch payload into per-chapter content.
// A chapter missing from the result, or present with empty text, has no
// usable content in that payload.
type ContentExtractor interface {
	Extract(raw json.RawMessage) map[string]ChapterContent
}

// Directory is the remote listing for a book: ordered chapters plus
// whatever metadata the upstream exposes.
type Directory struct {
	BookID   string
	Meta     BookMeta
	Chapters []ChapterRef
}

// DirectoryService fetches the remote chapter directory for a book.
type DirectoryService interface {
	FetchDirectory(ctx context.Context, bookID string) (*Directory, error)
}

// CommentFetcher retrieves the supplementary comment payload for one
// chapter. Used only when the comment-fetch phase is enabled.
type CommentFetcher interface {
	FetchComments(ctx context.Context, bookID, chapterID string) (json.RawMessage, error)
}
