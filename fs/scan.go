package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pzhu/bookfetch"
)

// BookUpdate is the update-check result for one locally downloaded book.
type BookUpdate struct {
	BookID      string
	BookName    string
	Folder      string
	LocalSaved  int
	LocalFailed int
	RemoteTotal int
	NewChapters int
}

// HasUpdate reports whether the remote directory carries chapters the local
// record lacks. Failed local entries count as missing.
func (u *BookUpdate) HasUpdate() bool {
	return u.NewChapters > 0
}

// Scanner walks the save directory for book folders and compares each local
// record against a freshly fetched remote directory.
type Scanner struct {
	Root      string
	Directory bookfetch.DirectoryService
	Logf      func(format string, args ...any)
}

// Scan checks every recognizable book folder. Books whose remote directory
// cannot be fetched are logged and skipped rather than failing the scan.
func (s *Scanner) Scan(ctx context.Context) ([]*BookUpdate, error) {
	dirents, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, bookfetch.Errorf(bookfetch.EINTERNAL, "reading save dir: %v", err)
	}

	var out []*BookUpdate
	for _, de := range dirents {
		if !de.IsDir() {
			continue
		}
		bookID, bookName, ok := ParseBookFolder(de.Name())
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, bookfetch.Errorf(bookfetch.ECANCELED, "scan canceled: %v", err)
		}

		update, err := s.checkBook(ctx, bookID, bookName, filepath.Join(s.Root, de.Name()))
		if err != nil {
			if s.Logf != nil {
				s.Logf("checking %s (%s): %v", bookName, bookID, err)
			}
			continue
		}
		out = append(out, update)
	}
	return out, nil
}

func (s *Scanner) checkBook(ctx context.Context, bookID, bookName, folder string) (*BookUpdate, error) {
	record := &StatusFile{folder: folder, bookID: bookID}
	entries, err := record.Load(ctx)
	if err != nil {
		return nil, err
	}
	_, saved, failed := bookfetch.CountStatus(entries)

	dir, err := s.Directory.FetchDirectory(ctx, bookID)
	if err != nil {
		return nil, err
	}

	update := &BookUpdate{
		BookID:      bookID,
		BookName:    bookName,
		Folder:      folder,
		LocalSaved:  saved,
		LocalFailed: failed,
		RemoteTotal: len(dir.Chapters),
	}
	if n := update.RemoteTotal - saved; n > 0 {
		update.NewChapters = n
	}
	return update, nil
}
