package fetch

import (
	"sync"

	"github.com/pzhu/bookfetch"
)

// Reporter is the single reporting gateway for a run's progress. All
// mutations go through it; each one clamps counters at their totals and
// emits exactly one notification. Safe for concurrent use by fetch workers.
type Reporter struct {
	mu       sync.Mutex
	snap     bookfetch.ProgressSnapshot
	callback bookfetch.ProgressFunc
	bars     *Bars
}

// NewReporter seeds a reporter for a run over chapterTotal chapters of which
// alreadySaved are persisted from earlier runs. groupTotal is the number of
// groups the pending set partitions into.
func NewReporter(chapterTotal, groupTotal, alreadySaved int, callback bookfetch.ProgressFunc) *Reporter {
	return &Reporter{
		snap: bookfetch.ProgressSnapshot{
			GroupTotal:    groupTotal,
			ChapterTotal:  chapterTotal,
			SavedChapters: alreadySaved,
			SavePhase:     bookfetch.SavePhaseText,
		},
		callback: callback,
	}
}

// AttachBars renders terminal progress bars on every notification. Intended
// only for single-worker runs with no callback attached.
func (r *Reporter) AttachBars(b *Bars) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bars = b
}

// notify must be called with the mutex held.
func (r *Reporter) notify() {
	snap := r.snap
	if r.bars != nil {
		r.bars.Render(snap)
	}
	if r.callback != nil {
		r.callback(snap)
	}
}

// IncGroup marks one more group complete.
func (r *Reporter) IncGroup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap.GroupDone < r.snap.GroupTotal {
		r.snap.GroupDone++
	}
	r.notify()
}

// IncSaved marks one more chapter persisted with usable content.
func (r *Reporter) IncSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap.SavedChapters < r.snap.ChapterTotal {
		r.snap.SavedChapters++
	}
	r.notify()
}

// SetSavePhase advances the active persistence stage.
func (r *Reporter) SetSavePhase(p bookfetch.SavePhase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.SavePhase = p
	r.notify()
}

// ResetSaveProgress rewinds the saved-chapter counter to a known value,
// clamped to the chapter total.
func (r *Reporter) ResetSaveProgress(saved int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if saved < 0 {
		saved = 0
	}
	if saved > r.snap.ChapterTotal {
		saved = r.snap.ChapterTotal
	}
	r.snap.SavedChapters = saved
	r.notify()
}

// ResetForRetry reinitializes counters for a retry pass over pendingLen
// still-missing chapters out of total. Saved reflects what earlier passes
// persisted; group counters restart for the new pass.
func (r *Reporter) ResetForRetry(total, pendingLen int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pendingLen > total {
		pendingLen = total
	}
	r.snap.ChapterTotal = total
	r.snap.SavedChapters = total - pendingLen
	r.snap.GroupDone = 0
	r.snap.GroupTotal = groupCount(pendingLen)
	r.snap.SavePhase = bookfetch.SavePhaseText
	r.notify()
}

// InitComments seeds the comment counters: total chapters eligible and how
// many already have cached payloads on disk.
func (r *Reporter) InitComments(total, cached int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached > total {
		cached = total
	}
	r.snap.CommentTotal = total
	r.snap.CommentFetch = cached
	r.snap.CommentSaved = cached
	r.notify()
}

// IncCommentFetch marks one more comment payload fetched.
func (r *Reporter) IncCommentFetch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap.CommentFetch < r.snap.CommentTotal {
		r.snap.CommentFetch++
	}
	r.notify()
}

// IncCommentSaved marks one more comment payload written to the cache.
func (r *Reporter) IncCommentSaved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap.CommentSaved < r.snap.CommentTotal {
		r.snap.CommentSaved++
	}
	r.notify()
}

// Snapshot returns the current progress state.
func (r *Reporter) Snapshot() bookfetch.ProgressSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// groupCount returns how many fixed-size groups n chapters partition into.
func groupCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + GroupSize - 1) / GroupSize
}
