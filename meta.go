package bookfetch

import "strings"

// BookMeta holds book-level metadata gathered from directory and search
// lookups. All fields are optional; empty values mean "unknown".
type BookMeta struct {
	BookName     string   `json:"bookName,omitempty"`
	Author       string   `json:"author,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CoverURL     string   `json:"coverUrl,omitempty"`
	Finished     *bool    `json:"finished,omitempty"`
	ChapterCount int      `json:"chapterCount,omitempty"`
	WordCount    int      `json:"wordCount,omitempty"`
	Category     string   `json:"category,omitempty"`
}

// MergeMeta fills empty fields of primary from fallback. Non-empty primary
// fields always win.
func MergeMeta(primary, fallback BookMeta) BookMeta {
	out := primary
	if out.BookName == "" {
		out.BookName = fallback.BookName
	}
	if out.Author == "" {
		out.Author = fallback.Author
	}
	if out.Description == "" {
		out.Description = fallback.Description
	}
	if len(out.Tags) == 0 {
		out.Tags = fallback.Tags
	}
	if out.CoverURL == "" {
		out.CoverURL = fallback.CoverURL
	}
	if out.Finished == nil {
		out.Finished = fallback.Finished
	}
	if out.ChapterCount == 0 {
		out.ChapterCount = fallback.ChapterCount
	}
	if out.WordCount == 0 {
		out.WordCount = fallback.WordCount
	}
	if out.Category == "" {
		out.Category = fallback.Category
	}
	return out
}

// MergeMetaPreferHintName merges directory metadata with a caller-supplied
// hint. The hint's book name wins so the name the user saw in search stays
// consistent; every other field prefers the authoritative directory value.
func MergeMetaPreferHintName(dirMeta, hintMeta BookMeta) BookMeta {
	out := MergeMeta(dirMeta, hintMeta)
	if hintMeta.BookName != "" {
		out.BookName = hintMeta.BookName
	}
	return out
}

// MergeTagLists concatenates primary and fallback tags, trimming whitespace
// and dropping duplicates while preserving first-seen order.
func MergeTagLists(primary, fallback []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range append(append([]string{}, primary...), fallback...) {
		t := strings.TrimSpace(tag)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// DropTagEqualsCategory removes tags identical to the category so the
// category is not displayed twice.
func DropTagEqualsCategory(tags []string, category string) []string {
	cat := strings.TrimSpace(category)
	if cat == "" {
		return tags
	}
	out := tags[:0:0]
	for _, t := range tags {
		if strings.TrimSpace(t) != cat {
			out = append(out, t)
		}
	}
	return out
}
