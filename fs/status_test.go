package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pzhu/bookfetch"
	"github.com/pzhu/bookfetch/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBook(t *testing.T, root, bookID, bookName string) bookfetch.StatusStore {
	t.Helper()
	store, err := fs.NewStatusService(root).OpenBook(bookID, bookName)
	require.NoError(t, err)
	return store
}

func TestStatusService(t *testing.T) {
	t.Parallel()

	t.Run("implements bookfetch.StatusService interface", func(t *testing.T) {
		t.Parallel()
		var _ bookfetch.StatusService = fs.NewStatusService(t.TempDir())
	})

	t.Run("creates the book folder from id and sanitized name", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		store := openBook(t, root, "42", `A/B:C?`)
		assert.Equal(t, filepath.Join(root, "42_A_B_C_"), store.Folder())
		info, err := os.Stat(store.Folder())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects empty book ID", func(t *testing.T) {
		t.Parallel()
		_, err := fs.NewStatusService(t.TempDir()).OpenBook("", "name")
		require.Error(t, err)
		assert.Equal(t, bookfetch.EINVALID, bookfetch.ErrorCode(err))
	})
}

func TestStatusFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round-trips saved and failed chapters through flush", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		store := openBook(t, root, "1", "book")
		_, err := store.Load(ctx)
		require.NoError(t, err)
		require.NoError(t, store.SaveChapter(ctx, "10", "Ten", "body ten"))
		require.NoError(t, store.SaveError(ctx, "11", "Eleven"))
		require.NoError(t, store.Flush(ctx))

		reopened := openBook(t, root, "1", "book")
		entries, err := reopened.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries["10"].Saved())
		assert.Equal(t, "body ten", *entries["10"].Content)
		assert.False(t, entries["11"].Saved())
		assert.Nil(t, entries["11"].Content)
	})

	t.Run("status file uses the downloaded map of title content pairs", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		store := openBook(t, root, "1", "book")
		require.NoError(t, store.SaveChapter(ctx, "10", "Ten", "body"))
		require.NoError(t, store.Flush(ctx))

		data, err := os.ReadFile(filepath.Join(store.Folder(), "status.json"))
		require.NoError(t, err)
		var rec struct {
			Downloaded map[string][2]*string `json:"downloaded"`
		}
		require.NoError(t, json.Unmarshal(data, &rec))
		require.Contains(t, rec.Downloaded, "10")
		assert.Equal(t, "Ten", *rec.Downloaded["10"][0])
		assert.Equal(t, "body", *rec.Downloaded["10"][1])
	})

	t.Run("reads the legacy bare-map file form", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := filepath.Join(root, "7_legacy")
		require.NoError(t, os.MkdirAll(folder, 0o755))
		legacy := `{"1": ["One", "content one"], "2": ["Two", null]}`
		require.NoError(t, os.WriteFile(filepath.Join(folder, "chapter_status_7.json"), []byte(legacy), 0o644))

		store := openBook(t, root, "7", "legacy")
		entries, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, entries["1"].Saved())
		assert.False(t, entries["2"].Saved())
	})

	t.Run("canonical file wins over the legacy form", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := filepath.Join(root, "7_book")
		require.NoError(t, os.MkdirAll(folder, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(folder, "status.json"),
			[]byte(`{"downloaded": {"1": ["One", "new"]}}`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(folder, "chapter_status_7.json"),
			[]byte(`{"1": ["One", "old"], "2": ["Two", "old"]}`), 0o644))

		store := openBook(t, root, "7", "book")
		entries, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "new", *entries["1"].Content)
	})

	t.Run("save error never downgrades a saved chapter", func(t *testing.T) {
		t.Parallel()
		store := openBook(t, t.TempDir(), "1", "book")
		require.NoError(t, store.SaveChapter(ctx, "10", "Ten", "body"))
		require.NoError(t, store.SaveError(ctx, "10", "Ten"))
		assert.True(t, store.Entries()["10"].Saved())
	})

	t.Run("clear removes the on-disk record", func(t *testing.T) {
		t.Parallel()
		store := openBook(t, t.TempDir(), "1", "book")
		require.NoError(t, store.SaveChapter(ctx, "10", "Ten", "body"))
		require.NoError(t, store.Flush(ctx))

		store.Clear()
		assert.Empty(t, store.Entries())
		entries, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestStatusFileJournal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("journal restores chapters missing from the status file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()

		// Simulate a crash after two saves but before any flush.
		store := openBook(t, root, "1", "book")
		require.NoError(t, store.SaveChapter(ctx, "10", "Ten", "body ten"))
		require.NoError(t, store.SaveChapter(ctx, "11", "Eleven", "body eleven"))

		reopened := openBook(t, root, "1", "book")
		entries, err := reopened.Load(ctx)
		require.NoError(t, err)
		assert.True(t, entries["10"].Saved())
		assert.True(t, entries["11"].Saved())
	})

	t.Run("torn tail line is skipped", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := filepath.Join(root, "1_book")
		require.NoError(t, os.MkdirAll(folder, 0o755))
		journal := `{"id":"10","title":"Ten","content":"body"}` + "\n" + `{"id":"11","ti`
		require.NoError(t, os.WriteFile(filepath.Join(folder, "downloaded_chapters.jsonl"), []byte(journal), 0o644))

		store := openBook(t, root, "1", "book")
		entries, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries["10"].Saved())
	})

	t.Run("flush truncates the journal", func(t *testing.T) {
		t.Parallel()
		store := openBook(t, t.TempDir(), "1", "book")
		require.NoError(t, store.SaveChapter(ctx, "10", "Ten", "body"))
		require.NoError(t, store.Flush(ctx))

		_, err := os.Stat(filepath.Join(store.Folder(), "downloaded_chapters.jsonl"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("status file content wins over older journal lines", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		folder := filepath.Join(root, "1_book")
		require.NoError(t, os.MkdirAll(folder, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(folder, "status.json"),
			[]byte(`{"downloaded": {"10": ["Ten", "canonical"]}}`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(folder, "downloaded_chapters.jsonl"),
			[]byte(`{"id":"10","title":"Ten","content":"journal"}`+"\n"), 0o644))

		store := openBook(t, root, "1", "book")
		entries, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "canonical", *entries["10"].Content)
	})
}

func TestParseBookFolder(t *testing.T) {
	t.Parallel()

	t.Run("splits id and name", func(t *testing.T) {
		t.Parallel()
		id, name, ok := fs.ParseBookFolder("1234_My Book_Extra")
		require.True(t, ok)
		assert.Equal(t, "1234", id)
		assert.Equal(t, "My Book_Extra", name)
	})

	t.Run("rejects non-numeric ids and malformed names", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"notabook", "abc_book", "_book", "1234_"} {
			_, _, ok := fs.ParseBookFolder(name)
			assert.False(t, ok, name)
		}
	})
}
