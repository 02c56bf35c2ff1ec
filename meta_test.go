package bookfetch_test

import (
	"testing"

	"github.com/pzhu/bookfetch"
	"github.com/stretchr/testify/assert"
)

func TestMergeMeta(t *testing.T) {
	t.Parallel()

	t.Run("primary fields win", func(t *testing.T) {
		t.Parallel()
		got := bookfetch.MergeMeta(
			bookfetch.BookMeta{BookName: "A", Author: "X"},
			bookfetch.BookMeta{BookName: "B", Author: "Y", Category: "fantasy"},
		)
		assert.Equal(t, "A", got.BookName)
		assert.Equal(t, "X", got.Author)
		assert.Equal(t, "fantasy", got.Category)
	})

	t.Run("fallback fills zero values", func(t *testing.T) {
		t.Parallel()
		finished := true
		got := bookfetch.MergeMeta(
			bookfetch.BookMeta{},
			bookfetch.BookMeta{Finished: &finished, ChapterCount: 12, WordCount: 30000},
		)
		assert.NotNil(t, got.Finished)
		assert.True(t, *got.Finished)
		assert.Equal(t, 12, got.ChapterCount)
		assert.Equal(t, 30000, got.WordCount)
	})
}

func TestMergeMetaPreferHintName(t *testing.T) {
	t.Parallel()

	got := bookfetch.MergeMetaPreferHintName(
		bookfetch.BookMeta{BookName: "Directory Title", Author: "Dir Author"},
		bookfetch.BookMeta{BookName: "Search Title"},
	)
	assert.Equal(t, "Search Title", got.BookName)
	assert.Equal(t, "Dir Author", got.Author)
}

func TestMergeTagLists(t *testing.T) {
	t.Parallel()

	got := bookfetch.MergeTagLists([]string{"action", " wuxia "}, []string{"wuxia", "", "cultivation"})
	assert.Equal(t, []string{"action", "wuxia", "cultivation"}, got)
}

func TestDropTagEqualsCategory(t *testing.T) {
	t.Parallel()

	t.Run("removes matching tag", func(t *testing.T) {
		t.Parallel()
		got := bookfetch.DropTagEqualsCategory([]string{"fantasy", "action"}, "fantasy")
		assert.Equal(t, []string{"action"}, got)
	})

	t.Run("empty category is a no-op", func(t *testing.T) {
		t.Parallel()
		tags := []string{"fantasy", "action"}
		assert.Equal(t, tags, bookfetch.DropTagEqualsCategory(tags, " "))
	})
}
