package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pzhu/bookfetch"
	"golang.org/x/sync/errgroup"
)

// Comment pool bounds. Worker count is clamped so the supplementary phase
// never outpaces the main fetch.
const (
	commentDirName    = "segment_comments"
	maxCommentWorkers = 8
)

// CommentPool fetches per-chapter comment payloads through a bounded worker
// pool and caches them as JSON files under the book folder. Chapters with an
// existing cache file are skipped. Failures are logged and skipped; the
// phase never fails the run.
type CommentPool struct {
	Fetcher  bookfetch.CommentFetcher
	Workers  int
	Folder   string
	Progress *Reporter
	Logf     LogFunc
}

// Run fetches comments for every chapter lacking a cached payload.
func (p *CommentPool) Run(ctx context.Context, bookID string, chapters []bookfetch.ChapterRef) error {
	dir := filepath.Join(p.Folder, commentDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return bookfetch.Errorf(bookfetch.EINTERNAL, "creating comment cache dir: %v", err)
	}

	var todo []bookfetch.ChapterRef
	cached := 0
	for _, ch := range chapters {
		if _, err := os.Stat(p.cachePath(dir, ch.ID)); err == nil {
			cached++
			continue
		}
		todo = append(todo, ch)
	}
	p.Progress.InitComments(len(chapters), cached)

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > maxCommentWorkers {
		workers = maxCommentWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ch := range todo {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			raw, err := p.Fetcher.FetchComments(gctx, bookID, ch.ID)
			if err != nil {
				if p.Logf != nil {
					p.Logf("fetching comments for chapter %s: %v", ch.ID, err)
				}
				return nil
			}
			p.Progress.IncCommentFetch()
			if err := writeFileAtomic(p.cachePath(dir, ch.ID), raw); err != nil {
				if p.Logf != nil {
					p.Logf("caching comments for chapter %s: %v", ch.ID, err)
				}
				return nil
			}
			p.Progress.IncCommentSaved()
			return nil
		})
	}
	return g.Wait()
}

func (p *CommentPool) cachePath(dir, chapterID string) string {
	return filepath.Join(dir, chapterID+".json")
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a partial payload.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
