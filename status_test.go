package bookfetch_test

import (
	"testing"

	"github.com/pzhu/bookfetch"
	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string { return &s }

func TestChapterEntrySaved(t *testing.T) {
	t.Parallel()

	t.Run("non-empty content is saved", func(t *testing.T) {
		t.Parallel()
		assert.True(t, bookfetch.ChapterEntry{Title: "t", Content: strptr("body")}.Saved())
	})

	t.Run("nil content is not saved", func(t *testing.T) {
		t.Parallel()
		assert.False(t, bookfetch.ChapterEntry{Title: "t"}.Saved())
	})

	t.Run("blank content is not saved", func(t *testing.T) {
		t.Parallel()
		assert.False(t, bookfetch.ChapterEntry{Title: "t", Content: strptr("  \n")}.Saved())
	})
}

func TestPendingChapters(t *testing.T) {
	t.Parallel()

	all := chapters("a", "b", "c", "d")
	entries := map[string]bookfetch.ChapterEntry{
		"a": {Title: "A", Content: strptr("text")},
		"b": {Title: "B", Content: nil},
		"d": {Title: "D", Content: strptr("")},
	}

	t.Run("skips saved, keeps failed and unattempted in order", func(t *testing.T) {
		t.Parallel()
		got := bookfetch.PendingChapters(entries, all)
		assert.Equal(t, chapters("b", "c", "d"), got)
	})

	t.Run("empty record means everything pending", func(t *testing.T) {
		t.Parallel()
		got := bookfetch.PendingChapters(nil, all)
		assert.Equal(t, all, got)
	})
}

func TestFailedChapters(t *testing.T) {
	t.Parallel()

	all := chapters("a", "b", "c")
	entries := map[string]bookfetch.ChapterEntry{
		"a": {Title: "A", Content: strptr("text")},
		"b": {Title: "B", Content: nil},
	}

	got := bookfetch.FailedChapters(entries, all)
	assert.Equal(t, chapters("b"), got, "unattempted chapters are not failures")
}

func TestCountStatus(t *testing.T) {
	t.Parallel()

	entries := map[string]bookfetch.ChapterEntry{
		"a": {Content: strptr("text")},
		"b": {Content: nil},
		"c": {Content: strptr("more")},
	}
	total, saved, failed := bookfetch.CountStatus(entries)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 1, failed)
}
