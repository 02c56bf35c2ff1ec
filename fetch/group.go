package fetch

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pzhu/bookfetch"
	"golang.org/x/sync/errgroup"
)

// GroupSize is the number of chapter ids batched into one upstream request,
// matching the upstream batch-API limit.
const GroupSize = 25

// ChunkChapters partitions chapters into groups of at most size, preserving
// order.
func ChunkChapters(chapters []bookfetch.ChapterRef, size int) [][]bookfetch.ChapterRef {
	if size < 1 {
		size = GroupSize
	}
	var out [][]bookfetch.ChapterRef
	for start := 0; start < len(chapters); start += size {
		end := start + size
		if end > len(chapters) {
			end = len(chapters)
		}
		out = append(out, chapters[start:end])
	}
	return out
}

// JoinIDs renders a group as the comma-joined id list the upstream expects.
func JoinIDs(group []bookfetch.ChapterRef) string {
	ids := make([]string, len(group))
	for i, ch := range group {
		ids[i] = ch.ID
	}
	return strings.Join(ids, ",")
}

// GroupRunner drives the concurrent retrieval of chapter groups. Each worker
// processes one group end-to-end: request, extract, persist, report. A group
// whose retries are exhausted records its chapters as failed and does not
// abort sibling groups; only pool exhaustion stops the run. Cancellation is
// checked before each dispatch; in-flight groups finish.
type GroupRunner struct {
	Source    bookfetch.GroupSource
	Extractor bookfetch.ContentExtractor
	Status    bookfetch.StatusStore
	Progress  *Reporter
	Workers   int
	Packaged  bool
	Cancel    *atomic.Bool
	Logf      LogFunc
}

// Run fetches every pending chapter group and returns per-chapter tallies.
// The returned error is non-nil only for run-fatal conditions (pool
// exhausted); cancellation and per-group failures are reflected in the
// result counts.
func (r *GroupRunner) Run(ctx context.Context, pending []bookfetch.ChapterRef) (bookfetch.DownloadResult, error) {
	var (
		result bookfetch.DownloadResult
		mu     sync.Mutex
		fatal  atomic.Pointer[bookfetch.Error]
	)

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	groups := ChunkChapters(pending, GroupSize)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	dispatched := 0
	for _, group := range groups {
		if r.canceled() || gctx.Err() != nil || fatal.Load() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			// Re-check on worker entry: the flag may have been set while
			// this group waited for a worker slot.
			if r.canceled() || gctx.Err() != nil {
				mu.Lock()
				result.Canceled += len(group)
				mu.Unlock()
				return nil
			}
			saved, failed, err := r.processGroup(gctx, group)
			mu.Lock()
			result.Success += saved
			result.Failed += failed
			mu.Unlock()
			if err != nil && bookfetch.ErrorCode(err) == bookfetch.ECANCELED {
				// Cancellation arrived through the context mid-fetch; the
				// group's unprocessed chapters count as canceled work.
				mu.Lock()
				result.Canceled += len(group) - saved - failed
				mu.Unlock()
				return nil
			}
			if err != nil && bookfetch.ErrorCode(err) == bookfetch.EUNAVAILABLE {
				// No endpoints remain. Stop dispatching and surface.
				var e *bookfetch.Error
				if ae, ok := err.(*bookfetch.Error); ok {
					e = ae
				} else {
					e = bookfetch.Errorf(bookfetch.EUNAVAILABLE, "%v", err)
				}
				fatal.CompareAndSwap(nil, e)
				return e
			}
			return nil
		})
	}

	// Chapters in groups never dispatched count as canceled work.
	for _, group := range groups[dispatched:] {
		result.Canceled += len(group)
	}

	waitErr := g.Wait()
	if e := fatal.Load(); e != nil {
		return result, e
	}
	if waitErr != nil {
		return result, waitErr
	}
	return result, nil
}

// processGroup fetches one group and persists its outcome. Returns saved and
// failed chapter counts; the error is non-nil only when the failure should
// reach the coordinator.
func (r *GroupRunner) processGroup(ctx context.Context, group []bookfetch.ChapterRef) (saved, failed int, err error) {
	raw, err := r.Source.FetchGroup(ctx, JoinIDs(group), r.Packaged)
	if err != nil {
		switch bookfetch.ErrorCode(err) {
		case bookfetch.EUNAVAILABLE:
			// Fatal for the run; chapters stay pending, nothing recorded.
			return 0, 0, err
		case bookfetch.ECANCELED:
			// Chapters stay pending; the coordinator tallies them.
			return 0, 0, err
		}
		// Retries exhausted for this group alone. Record the chapters as
		// attempted-but-failed and let sibling groups continue.
		if r.Logf != nil {
			r.Logf("group starting at %s failed: %v", group[0].ID, err)
		}
		for _, ch := range group {
			if serr := r.Status.SaveError(ctx, ch.ID, ch.Title); serr != nil && r.Logf != nil {
				r.Logf("recording failure for chapter %s: %v", ch.ID, serr)
			}
		}
		failed = len(group)
		r.flushAndReport()
		return 0, failed, nil
	}

	contents := r.Extractor.Extract(raw)
	for _, ch := range group {
		c, ok := contents[ch.ID]
		if !ok || strings.TrimSpace(c.Text) == "" {
			if serr := r.Status.SaveError(ctx, ch.ID, ch.Title); serr != nil && r.Logf != nil {
				r.Logf("recording failure for chapter %s: %v", ch.ID, serr)
			}
			failed++
			continue
		}
		title := c.Title
		if title == "" {
			title = ch.Title
		}
		if serr := r.Status.SaveChapter(ctx, ch.ID, title, c.Text); serr != nil {
			if r.Logf != nil {
				r.Logf("persisting chapter %s: %v", ch.ID, serr)
			}
			failed++
			continue
		}
		saved++
		r.Progress.IncSaved()
	}
	r.flushAndReport()
	return saved, failed, nil
}

func (r *GroupRunner) flushAndReport() {
	if err := r.Status.Flush(context.Background()); err != nil && r.Logf != nil {
		r.Logf("flushing status record: %v", err)
	}
	r.Progress.IncGroup()
}

func (r *GroupRunner) canceled() bool {
	return r.Cancel != nil && r.Cancel.Load()
}
