package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pzhu/bookfetch"
)

// DefaultDirectoryBaseURL is the web origin serving the chapter directory.
const DefaultDirectoryBaseURL = "https://fanqienovel.com"

var _ bookfetch.DirectoryService = (*DirectoryClient)(nil)

// DirectoryClient fetches the remote chapter directory over the web API.
// The payload shape varies between deployments, so chapter and metadata
// fields are picked tolerantly from several key spellings.
type DirectoryClient struct {
	BaseURL string
	client  *http.Client
}

// NewDirectoryClient creates a directory client against base, falling back
// to DefaultDirectoryBaseURL when base is empty.
func NewDirectoryClient(base string, timeout time.Duration) *DirectoryClient {
	if base == "" {
		base = DefaultDirectoryBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &DirectoryClient{
		BaseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchDirectory retrieves the ordered chapter list and book metadata.
func (c *DirectoryClient) FetchDirectory(ctx context.Context, bookID string) (*bookfetch.Directory, error) {
	if !isNumericID(bookID) {
		return nil, bookfetch.Errorf(bookfetch.EINVALID, "book ID must be numeric, got %q", bookID)
	}

	url := fmt.Sprintf("%s/api/reader/directory/detail?bookId=%s", c.BaseURL, bookID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, bookfetch.Errorf(bookfetch.EINVALID, "building directory request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Referer", fmt.Sprintf("%s/page/%s", c.BaseURL, bookID))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "requesting directory: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, bookfetch.Errorf(bookfetch.ENOTFOUND, "book %s does not exist", bookID)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "directory HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "reading directory response: %v", err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, bookfetch.Errorf(bookfetch.EINTERNAL, "parsing directory response: %v", err)
	}

	chapters := extractChapters(payload)
	if len(chapters) == 0 {
		return nil, bookfetch.Errorf(bookfetch.ENOTFOUND, "directory for book %s is empty", bookID)
	}

	return &bookfetch.Directory{
		BookID:   bookID,
		Meta:     extractMeta(payload),
		Chapters: chapters,
	}, nil
}

func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Key spellings observed across directory deployments.
var (
	chapterIDKeys    = []string{"item_id", "itemId", "chapter_id", "chapterId", "catalog_id", "catalogId", "id"}
	chapterTitleKeys = []string{"title", "chapter_title", "chapterTitle", "name", "chapter_name"}
)

// extractChapters walks the payload for the first array whose elements parse
// into chapter references.
func extractChapters(v any) []bookfetch.ChapterRef {
	switch t := v.(type) {
	case []any:
		var out []bookfetch.ChapterRef
		for _, item := range t {
			if ref, ok := parseChapterRef(item); ok {
				out = append(out, ref)
			}
		}
		if len(out) > 0 {
			return out
		}
		for _, item := range t {
			if refs := extractChapters(item); len(refs) > 0 {
				return refs
			}
		}
	case map[string]any:
		for _, child := range t {
			if refs := extractChapters(child); len(refs) > 0 {
				return refs
			}
		}
	}
	return nil
}

func parseChapterRef(v any) (bookfetch.ChapterRef, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return bookfetch.ChapterRef{}, false
	}
	id := pickString(m, chapterIDKeys)
	if id == "" {
		return bookfetch.ChapterRef{}, false
	}
	title := pickString(m, chapterTitleKeys)
	if title == "" {
		title = id
	}
	return bookfetch.ChapterRef{ID: id, Title: title}, true
}

func extractMeta(v any) bookfetch.BookMeta {
	var meta bookfetch.BookMeta
	walkMaps(v, func(m map[string]any) {
		if meta.BookName == "" {
			meta.BookName = pickString(m, []string{"book_name", "bookName", "book_title"})
		}
		if meta.Author == "" {
			meta.Author = pickString(m, []string{"author", "author_name", "authorName"})
		}
		if meta.Description == "" {
			meta.Description = pickString(m, []string{"abstract", "description", "book_abstract"})
		}
		if meta.Category == "" {
			meta.Category = pickString(m, []string{"category", "category_name", "categoryName"})
		}
	})
	return meta
}

// walkMaps visits every JSON object in the payload, parents before children.
func walkMaps(v any, visit func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		visit(t)
		for _, child := range t {
			walkMaps(child, visit)
		}
	case []any:
		for _, item := range t {
			walkMaps(item, visit)
		}
	}
}

// pickString returns the first non-empty string (or stringified number)
// among the candidate keys.
func pickString(m map[string]any, keys []string) string {
	for _, k := range keys {
		switch val := m[k].(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return ""
}
