package fetch

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pzhu/bookfetch"
)

// barWidth is the character width of one rendered bar.
const barWidth = 24

// Bars renders a two-bar terminal progress display (group download and
// chapter save) on a single rewritten line. Used only for single-worker runs
// with no progress callback attached.
type Bars struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBars returns a bar renderer writing to w, normally os.Stderr.
func NewBars(w io.Writer) *Bars {
	return &Bars{w: w}
}

// Render redraws both bars from the snapshot.
func (b *Bars) Render(s bookfetch.ProgressSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := fmt.Sprintf("\rgroups %s %d/%d | %s save %s %d/%d",
		bar(s.GroupDone, s.GroupTotal), s.GroupDone, s.GroupTotal,
		s.SavePhase,
		bar(s.SavedChapters, s.ChapterTotal), s.SavedChapters, s.ChapterTotal)
	if s.CommentTotal > 0 {
		line += fmt.Sprintf(" | comments %d/%d", s.CommentSaved, s.CommentTotal)
	}
	fmt.Fprint(b.w, line)
}

// Finish terminates the rewritten line so later output starts clean.
func (b *Bars) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.w)
}

func bar(done, total int) string {
	if total <= 0 {
		return "[" + strings.Repeat("-", barWidth) + "]"
	}
	filled := done * barWidth / total
	if filled > barWidth {
		filled = barWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}
