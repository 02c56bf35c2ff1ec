package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pzhu/bookfetch"
	"github.com/pzhu/bookfetch/fs"
	"github.com/pzhu/bookfetch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStatus(t *testing.T, root, folder, content string) {
	t.Helper()
	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "status.json"), []byte(content), 0o644))
}

func remoteDirectory(total int) *mock.DirectoryService {
	return &mock.DirectoryService{
		FetchDirectoryFn: func(ctx context.Context, bookID string) (*bookfetch.Directory, error) {
			chapters := make([]bookfetch.ChapterRef, total)
			for i := range chapters {
				chapters[i] = bookfetch.ChapterRef{ID: bookID + "-" + string(rune('a'+i))}
			}
			return &bookfetch.Directory{BookID: bookID, Chapters: chapters}, nil
		},
	}
}

func TestScanner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reports new chapters against the remote directory", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeStatus(t, root, "7_Book", `{"downloaded": {"1": ["One", "text"], "2": ["Two", "text"]}}`)

		s := &fs.Scanner{Root: root, Directory: remoteDirectory(5)}
		updates, err := s.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		u := updates[0]
		assert.Equal(t, "7", u.BookID)
		assert.Equal(t, "Book", u.BookName)
		assert.Equal(t, 2, u.LocalSaved)
		assert.Equal(t, 5, u.RemoteTotal)
		assert.Equal(t, 3, u.NewChapters)
		assert.True(t, u.HasUpdate())
	})

	t.Run("failed entries count toward has-update", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeStatus(t, root, "7_Book", `{"downloaded": {"1": ["One", "text"], "2": ["Two", null]}}`)

		s := &fs.Scanner{Root: root, Directory: remoteDirectory(2)}
		updates, err := s.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.Equal(t, 1, updates[0].LocalFailed)
		assert.Equal(t, 1, updates[0].NewChapters)
		assert.True(t, updates[0].HasUpdate())
	})

	t.Run("fully downloaded book has no update", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeStatus(t, root, "7_Book", `{"downloaded": {"1": ["One", "text"], "2": ["Two", "text"]}}`)

		s := &fs.Scanner{Root: root, Directory: remoteDirectory(2)}
		updates, err := s.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.False(t, updates[0].HasUpdate())
	})

	t.Run("skips folders that do not follow the naming convention", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-book"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

		s := &fs.Scanner{Root: root, Directory: remoteDirectory(1)}
		updates, err := s.Scan(ctx)
		require.NoError(t, err)
		assert.Empty(t, updates)
	})

	t.Run("directory failures skip the book, not the scan", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		writeStatus(t, root, "7_Bad", `{"downloaded": {}}`)
		writeStatus(t, root, "8_Good", `{"downloaded": {}}`)

		s := &fs.Scanner{
			Root: root,
			Directory: &mock.DirectoryService{
				FetchDirectoryFn: func(ctx context.Context, bookID string) (*bookfetch.Directory, error) {
					if bookID == "7" {
						return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "upstream down")
					}
					return &bookfetch.Directory{BookID: bookID, Chapters: []bookfetch.ChapterRef{{ID: "1"}}}, nil
				},
			},
		}
		updates, err := s.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.Equal(t, "8", updates[0].BookID)
	})

	t.Run("missing save dir yields an empty scan", func(t *testing.T) {
		t.Parallel()
		s := &fs.Scanner{Root: filepath.Join(t.TempDir(), "nope"), Directory: remoteDirectory(1)}
		updates, err := s.Scan(ctx)
		require.NoError(t, err)
		assert.Empty(t, updates)
	})
}
