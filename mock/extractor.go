package mock

import (
	"encoding/json"

	"github.com/pzhu/bookfetch"
)

var _ bookfetch.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of bookfetch.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(raw json.RawMessage) map[string]bookfetch.ChapterContent
}

func (e *ContentExtractor) Extract(raw json.RawMessage) map[string]bookfetch.ChapterContent {
	return e.ExtractFn(raw)
}
