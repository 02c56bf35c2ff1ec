package mock

import (
	"context"

	"github.com/pzhu/bookfetch"
)

var _ bookfetch.StatusStore = (*StatusStore)(nil)

// StatusStore is a mock implementation of bookfetch.StatusStore.
type StatusStore struct {
	LoadFn        func(ctx context.Context) (map[string]bookfetch.ChapterEntry, error)
	SaveChapterFn func(ctx context.Context, id, title, content string) error
	SaveErrorFn   func(ctx context.Context, id, title string) error
	FlushFn       func(ctx context.Context) error
	EntriesFn     func() map[string]bookfetch.ChapterEntry
	ClearFn       func()
	FolderFn      func() string
}

func (s *StatusStore) Load(ctx context.Context) (map[string]bookfetch.ChapterEntry, error) {
	return s.LoadFn(ctx)
}

func (s *StatusStore) SaveChapter(ctx context.Context, id, title, content string) error {
	return s.SaveChapterFn(ctx, id, title, content)
}

func (s *StatusStore) SaveError(ctx context.Context, id, title string) error {
	return s.SaveErrorFn(ctx, id, title)
}

func (s *StatusStore) Flush(ctx context.Context) error {
	return s.FlushFn(ctx)
}

func (s *StatusStore) Entries() map[string]bookfetch.ChapterEntry {
	return s.EntriesFn()
}

func (s *StatusStore) Clear() {
	s.ClearFn()
}

func (s *StatusStore) Folder() string {
	return s.FolderFn()
}

var _ bookfetch.StatusService = (*StatusService)(nil)

// StatusService is a mock implementation of bookfetch.StatusService.
type StatusService struct {
	OpenBookFn func(bookID, bookName string) (bookfetch.StatusStore, error)
}

func (s *StatusService) OpenBook(bookID, bookName string) (bookfetch.StatusStore, error) {
	return s.OpenBookFn(bookID, bookName)
}
