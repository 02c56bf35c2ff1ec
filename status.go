package bookfetch

import (
	"context"
	"strings"
)

// ChapterEntry is the persisted outcome for one attempted chapter.
// A nil Content means the chapter was attempted but yielded no usable
// content (recorded-but-failed); such chapters remain pending.
type ChapterEntry struct {
	Title   string
	Content *string
}

// Saved reports whether the entry carries usable, non-empty content.
func (e ChapterEntry) Saved() bool {
	return e.Content != nil && strings.TrimSpace(*e.Content) != ""
}

// StatusStore is the resumable persistence record for one book folder.
// Implementations must persist chapter outcomes so a later run can compute
// exactly which chapters remain outstanding.
type StatusStore interface {
	// Load reads the persisted record from disk, accepting legacy file
	// forms, and returns the current entries. Missing files are not an
	// error; they yield an empty record.
	Load(ctx context.Context) (map[string]ChapterEntry, error)

	// SaveChapter records a successful chapter with its content.
	SaveChapter(ctx context.Context, id, title, content string) error

	// SaveError records a chapter as attempted-but-failed.
	SaveError(ctx context.Context, id, title string) error

	// Flush writes the full record to disk atomically.
	Flush(ctx context.Context) error

	// Entries returns a copy of the current in-memory record.
	Entries() map[string]ChapterEntry

	// Clear discards all recorded outcomes (full re-download).
	Clear()

	// Folder returns the book folder path backing the record.
	Folder() string
}

// StatusService opens per-book status stores.
type StatusService interface {
	OpenBook(bookID, bookName string) (StatusStore, error)
}

// PendingChapters returns every chapter lacking usable persisted content,
// preserving plan order. A chapter recorded with empty content counts as
// pending.
func PendingChapters(entries map[string]ChapterEntry, chapters []ChapterRef) []ChapterRef {
	var out []ChapterRef
	for _, ch := range chapters {
		if e, ok := entries[ch.ID]; ok && e.Saved() {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// FailedChapters returns chapters recorded as attempted-but-failed,
// preserving plan order. Chapters never attempted are not included.
func FailedChapters(entries map[string]ChapterEntry, chapters []ChapterRef) []ChapterRef {
	var out []ChapterRef
	for _, ch := range chapters {
		if e, ok := entries[ch.ID]; ok && !e.Saved() {
			out = append(out, ch)
		}
	}
	return out
}

// CountStatus tallies a record: total attempted entries, entries with usable
// content, and failed entries.
func CountStatus(entries map[string]ChapterEntry) (total, saved, failed int) {
	total = len(entries)
	for _, e := range entries {
		if e.Saved() {
			saved++
		}
	}
	return total, saved, total - saved
}
