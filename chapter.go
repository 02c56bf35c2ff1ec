package bookfetch

// ChapterRef identifies one unit of fetchable content within a book.
// References are immutable once a plan is built; ordering in the plan
// defines canonical chapter order.
type ChapterRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ChapterRange narrows a plan to a contiguous sub-sequence of chapters.
// Start and End are inclusive, 0-based indexes over the plan's chapter list.
type ChapterRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate returns an error if the range is not a usable interval.
func (r ChapterRange) Validate() error {
	if r.Start < 0 {
		return Errorf(EINVALID, "range start must not be negative")
	}
	if r.End < r.Start {
		return Errorf(EINVALID, "range end must not precede start")
	}
	return nil
}

// ApplyRange returns the chapters selected by range. A nil range selects all
// chapters. Out-of-bounds ends are clamped; a start past the final chapter
// selects nothing.
func ApplyRange(chapters []ChapterRef, r *ChapterRange) []ChapterRef {
	if r == nil {
		out := make([]ChapterRef, len(chapters))
		copy(out, chapters)
		return out
	}
	if r.Validate() != nil || r.Start >= len(chapters) {
		return nil
	}
	end := r.End
	if end >= len(chapters) {
		end = len(chapters) - 1
	}
	out := make([]ChapterRef, end-r.Start+1)
	copy(out, chapters[r.Start:end+1])
	return out
}

// DownloadPlan is an immutable description of what to fetch: the book, its
// metadata, and the full ordered chapter list. Created once per download
// invocation and read-only thereafter.
type DownloadPlan struct {
	BookID   string       `json:"bookId"`
	Meta     BookMeta     `json:"meta"`
	Chapters []ChapterRef `json:"chapters"`
}

// Validate returns an error if the plan cannot drive a download.
func (p *DownloadPlan) Validate() error {
	if p.BookID == "" {
		return Errorf(EINVALID, "plan book ID required")
	}
	if len(p.Chapters) == 0 {
		return Errorf(EINVALID, "plan has no chapters")
	}
	seen := make(map[string]struct{}, len(p.Chapters))
	for _, ch := range p.Chapters {
		if ch.ID == "" {
			return Errorf(EINVALID, "plan chapter with empty ID")
		}
		if _, ok := seen[ch.ID]; ok {
			return Errorf(EINVALID, "plan chapter %q duplicated", ch.ID)
		}
		seen[ch.ID] = struct{}{}
	}
	return nil
}

// Name returns the display name for the book, falling back to the book ID
// when metadata carries no name.
func (p *DownloadPlan) Name() string {
	if p.Meta.BookName != "" {
		return p.Meta.BookName
	}
	return p.BookID
}

// DownloadMode selects which chapter subset a run operates on.
type DownloadMode int

const (
	// ModeResume downloads chapters without usable persisted content (default).
	ModeResume DownloadMode = iota
	// ModeFull discards persisted state and downloads everything again.
	ModeFull
	// ModeFailedOnly downloads only chapters recorded as failed.
	ModeFailedOnly
	// ModeRangeIgnoreHistory discards persisted state for a range re-download.
	ModeRangeIgnoreHistory
)

// DownloadResult summarizes one fetch pass.
type DownloadResult struct {
	Success  int
	Failed   int
	Canceled int
}

// Add accumulates another pass into r.
func (r *DownloadResult) Add(other DownloadResult) {
	r.Success += other.Success
	r.Failed += other.Failed
	r.Canceled += other.Canceled
}
