package bookfetch

// SavePhase identifies which persistence stage of a run is active.
type SavePhase int

const (
	// SavePhaseText is the chapter body save stage.
	SavePhaseText SavePhase = iota
	// SavePhaseAudiobook is the later audio packaging stage.
	SavePhaseAudiobook
)

// String returns a human-readable phase name.
func (p SavePhase) String() string {
	switch p {
	case SavePhaseText:
		return "text"
	case SavePhaseAudiobook:
		return "audiobook"
	default:
		return "unknown"
	}
}

// ProgressSnapshot is a point-in-time view of a run's progress. All counters
// are monotonically non-decreasing within a run except on an explicit
// reset-for-retry event, and never exceed their paired totals.
type ProgressSnapshot struct {
	GroupDone     int       `json:"groupDone"`
	GroupTotal    int       `json:"groupTotal"`
	SavedChapters int       `json:"savedChapters"`
	ChapterTotal  int       `json:"chapterTotal"`
	SavePhase     SavePhase `json:"savePhase"`
	CommentFetch  int       `json:"commentFetch"`
	CommentTotal  int       `json:"commentTotal"`
	CommentSaved  int       `json:"commentSaved"`
}

// ProgressFunc receives snapshots as a run advances. Implementations may be
// a direct function, a channel sender, or a null sink; they must not block
// for unbounded time since they are invoked from fetch workers.
type ProgressFunc func(ProgressSnapshot)
