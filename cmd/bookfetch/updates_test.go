package main_test

import (
	"bytes"
	"context"
	"io"
	stdslog "log/slog"
	"testing"

	"github.com/pzhu/bookfetch"
	main "github.com/pzhu/bookfetch/cmd/bookfetch"
	"github.com/pzhu/bookfetch/fs"
	"github.com/pzhu/bookfetch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *stdslog.Logger {
	return stdslog.New(stdslog.NewTextHandler(io.Discard, nil))
}

// seedBook writes a status record with n saved chapters under root.
func seedBook(t *testing.T, root, bookID, bookName string, n int) {
	t.Helper()
	store, err := fs.NewStatusService(root).OpenBook(bookID, bookName)
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < n; i++ {
		id := string(rune('1' + i))
		require.NoError(t, store.SaveChapter(ctx, id, "ch "+id, "body "+id))
	}
	require.NoError(t, store.Flush(ctx))
}

func TestUpdatesCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports new chapters for a stale book", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		seedBook(t, root, "123", "My Book", 2)

		directory := &mock.DirectoryService{
			FetchDirectoryFn: func(_ context.Context, bookID string) (*bookfetch.Directory, error) {
				assert.Equal(t, "123", bookID)
				return &bookfetch.Directory{
					BookID:   bookID,
					Chapters: []bookfetch.ChapterRef{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Logger:    discardLogger(),
			Directory: directory,
		}

		cmd := &main.UpdatesCmd{SaveDir: root}
		require.NoError(t, cmd.Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "123")
		assert.Contains(t, output, "2/4 saved, 2 new")
	})

	t.Run("reports up to date books", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		seedBook(t, root, "456", "Done Book", 3)

		directory := &mock.DirectoryService{
			FetchDirectoryFn: func(_ context.Context, bookID string) (*bookfetch.Directory, error) {
				return &bookfetch.Directory{
					BookID:   bookID,
					Chapters: []bookfetch.ChapterRef{{ID: "1"}, {ID: "2"}, {ID: "3"}},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Logger:    discardLogger(),
			Directory: directory,
		}

		cmd := &main.UpdatesCmd{SaveDir: root}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "up to date (3 chapters)")
	})

	t.Run("empty save dir prints a hint", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Logger:    discardLogger(),
			Directory: &mock.DirectoryService{},
		}

		cmd := &main.UpdatesCmd{SaveDir: t.TempDir()}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "No downloaded books found")
	})
}
