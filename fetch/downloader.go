package fetch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pzhu/bookfetch"
)

// Options selects the chapter subset and reporting for one download run.
type Options struct {
	// Range narrows the plan to a contiguous sub-sequence; nil means all.
	Range *bookfetch.ChapterRange

	// Mode selects which chapters a run operates on.
	Mode bookfetch.DownloadMode

	// Progress receives snapshots; nil enables terminal bars when running
	// single-worker.
	Progress bookfetch.ProgressFunc

	// Cancel is a shared flag the caller may set asynchronously. In-flight
	// groups finish; no new group is dispatched once set.
	Cancel *atomic.Bool

	// RetryPasses is how many extra passes to run over chapters that failed
	// in earlier passes.
	RetryPasses int
}

// Downloader composes the fetch engine: plan preparation, pending-set
// computation from persisted state, the grouped fetch pool, progress, and
// optional run recording.
type Downloader struct {
	Directory   bookfetch.DirectoryService
	Primary     bookfetch.GroupSource
	PoolRequest RequestFunc
	Extractor   bookfetch.ContentExtractor
	Status      bookfetch.StatusService
	Runs        bookfetch.RunStore
	Comments    bookfetch.CommentFetcher
	Logf        LogFunc
}

// PreparePlan fetches the remote directory for a book and merges it with the
// caller-supplied metadata hint into an immutable download plan.
func (d *Downloader) PreparePlan(ctx context.Context, cfg *bookfetch.Config, bookID string, seed bookfetch.BookMeta) (*bookfetch.DownloadPlan, error) {
	if bookID == "" {
		return nil, bookfetch.Errorf(bookfetch.EINVALID, "book ID required")
	}
	dir, err := d.Directory.FetchDirectory(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("fetching directory for book %s: %w", bookID, err)
	}

	meta := bookfetch.MergeMetaPreferHintName(dir.Meta, seed)
	meta.Tags = bookfetch.DropTagEqualsCategory(
		bookfetch.MergeTagLists(dir.Meta.Tags, seed.Tags), meta.Category)

	plan := &bookfetch.DownloadPlan{BookID: bookID, Meta: meta, Chapters: dir.Chapters}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// DownloadWithPlan runs a download over the plan. The result carries saved,
// failed and canceled chapter counts; partial success is not an error. A
// non-nil error means the run could not proceed (invalid input, plan
// preparation, pool exhausted) or was canceled.
func (d *Downloader) DownloadWithPlan(ctx context.Context, cfg *bookfetch.Config, plan *bookfetch.DownloadPlan, opts Options) (*bookfetch.DownloadResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if opts.Range != nil {
		if err := opts.Range.Validate(); err != nil {
			return nil, err
		}
	}

	store, err := d.Status.OpenBook(plan.BookID, plan.Name())
	if err != nil {
		return nil, fmt.Errorf("opening status record: %w", err)
	}
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading status record: %w", err)
	}
	if opts.Mode == bookfetch.ModeFull {
		store.Clear()
		entries = nil
	}

	ranged := bookfetch.ApplyRange(plan.Chapters, opts.Range)
	pending := selectPending(entries, ranged, opts.Mode)
	total := len(ranged)

	reporter := NewReporter(total, groupCount(len(pending)), total-len(pending), opts.Progress)
	var bars *Bars
	if opts.Progress == nil && cfg.Workers() <= 1 {
		bars = NewBars(os.Stderr)
		reporter.AttachBars(bars)
		defer bars.Finish()
	}

	startedAt := time.Now()
	result := &bookfetch.DownloadResult{}

	if len(pending) > 0 {
		source, err := d.buildSource(ctx, cfg, pending[0].ID)
		if err != nil {
			return nil, err
		}

		runner := &GroupRunner{
			Source:    source,
			Extractor: d.Extractor,
			Status:    store,
			Progress:  reporter,
			Workers:   cfg.Workers(),
			Packaged:  cfg.Packaged(),
			Cancel:    opts.Cancel,
			Logf:      d.Logf,
		}

		pass, err := runner.Run(ctx, pending)
		result.Add(pass)
		if err != nil {
			d.recordRun(ctx, plan, store, startedAt)
			return result, err
		}

		for p := 0; p < opts.RetryPasses && !canceled(opts.Cancel); p++ {
			failed := bookfetch.FailedChapters(store.Entries(), ranged)
			if len(failed) == 0 {
				break
			}
			reporter.ResetForRetry(total, len(failed))
			pass, err := runner.Run(ctx, failed)
			// Earlier failures retried here were already counted; only new
			// saves move the needle.
			result.Success += pass.Success
			result.Failed -= pass.Success
			result.Canceled += pass.Canceled
			if err != nil {
				d.recordRun(ctx, plan, store, startedAt)
				return result, err
			}
		}
	}

	if cfg.EnableComments && d.Comments != nil && !canceled(opts.Cancel) {
		pool := &CommentPool{
			Fetcher:  d.Comments,
			Workers:  cfg.CommentWorkers,
			Folder:   store.Folder(),
			Progress: reporter,
			Logf:     d.Logf,
		}
		if err := pool.Run(ctx, plan.BookID, ranged); err != nil && d.Logf != nil {
			d.Logf("comment phase: %v", err)
		}
	}

	d.recordRun(ctx, plan, store, startedAt)

	if canceled(opts.Cancel) || result.Canceled > 0 {
		return result, bookfetch.Errorf(bookfetch.ECANCELED, "download canceled, %d chapters saved", result.Success)
	}
	return result, nil
}

// selectPending computes the chapter subset a run operates on.
func selectPending(entries map[string]bookfetch.ChapterEntry, ranged []bookfetch.ChapterRef, mode bookfetch.DownloadMode) []bookfetch.ChapterRef {
	switch mode {
	case bookfetch.ModeFailedOnly:
		return bookfetch.FailedChapters(entries, ranged)
	case bookfetch.ModeFull, bookfetch.ModeRangeIgnoreHistory:
		out := make([]bookfetch.ChapterRef, len(ranged))
		copy(out, ranged)
		return out
	default:
		return bookfetch.PendingChapters(entries, ranged)
	}
}

// buildSource picks the configured upstream: the cooldown-wrapped primary or
// the probed mirror pool.
func (d *Downloader) buildSource(ctx context.Context, cfg *bookfetch.Config, probeID string) (bookfetch.GroupSource, error) {
	if cfg.UsePrimary {
		return &CooldownPolicy{Source: d.Primary, Logf: d.Logf}, nil
	}

	good := ProbeEndpoints(ctx, cfg.Endpoints, probeID, cfg.Packaged(), d.PoolRequest, d.Extractor)
	if len(good) == 0 {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "no endpoint passed the startup probe")
	}
	if d.Logf != nil {
		d.Logf("%d of %d endpoints passed the startup probe", len(good), len(cfg.Endpoints))
	}

	min, max := cfg.WaitBounds()
	return &PoolPolicy{
		Pool:       NewEndpointPool(good),
		Request:    d.PoolRequest,
		Extractor:  d.Extractor,
		MaxRetries: cfg.Retries(),
		Backoff:    Backoff{Base: min, Cap: max},
		Logf:       d.Logf,
	}, nil
}

// recordRun persists the run outcome to history. Best effort; failures are
// logged, never surfaced.
func (d *Downloader) recordRun(ctx context.Context, plan *bookfetch.DownloadPlan, store bookfetch.StatusStore, startedAt time.Time) {
	if d.Runs == nil {
		return
	}
	entries := store.Entries()
	_, saved, failed := bookfetch.CountStatus(entries)
	run := &bookfetch.Run{
		ID:         uuid.New().String(),
		BookID:     plan.BookID,
		BookName:   plan.Name(),
		Saved:      saved,
		Failed:     failed,
		Digest:     contentDigest(entries),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if err := d.Runs.CreateRun(ctx, run); err != nil && d.Logf != nil {
		d.Logf("recording run: %v", err)
	}
}

// contentDigest hashes all saved chapter content in id order, giving a cheap
// fingerprint for spotting upstream content changes between runs.
func contentDigest(entries map[string]bookfetch.ChapterEntry) string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := xxhash.New()
	for _, id := range ids {
		e := entries[id]
		if !e.Saved() {
			continue
		}
		_, _ = h.WriteString(id)
		_, _ = h.WriteString(*e.Content)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func canceled(flag *atomic.Bool) bool {
	return flag != nil && flag.Load()
}
