package fetch_test

import (
	"testing"

	"github.com/pzhu/bookfetch"
	"github.com/pzhu/bookfetch/fetch"
	"github.com/stretchr/testify/assert"
)

func TestReporter(t *testing.T) {
	t.Parallel()

	t.Run("counters clamp at their totals", func(t *testing.T) {
		t.Parallel()

		r := fetch.NewReporter(3, 2, 0, nil)
		for i := 0; i < 10; i++ {
			r.IncSaved()
			r.IncGroup()
		}
		snap := r.Snapshot()
		assert.Equal(t, 3, snap.SavedChapters)
		assert.Equal(t, 2, snap.GroupDone)
	})

	t.Run("seeds already-saved chapters", func(t *testing.T) {
		t.Parallel()

		r := fetch.NewReporter(100, 2, 70, nil)
		snap := r.Snapshot()
		assert.Equal(t, 70, snap.SavedChapters)
		assert.Equal(t, 100, snap.ChapterTotal)
		assert.Equal(t, bookfetch.SavePhaseText, snap.SavePhase)
	})

	t.Run("reset for retry recomputes saved and groups", func(t *testing.T) {
		t.Parallel()

		r := fetch.NewReporter(100, 4, 0, nil)
		r.SetSavePhase(bookfetch.SavePhaseAudiobook)
		r.ResetForRetry(100, 30)

		snap := r.Snapshot()
		assert.Equal(t, 70, snap.SavedChapters)
		assert.Equal(t, 100, snap.ChapterTotal)
		assert.Equal(t, 0, snap.GroupDone)
		assert.Equal(t, 2, snap.GroupTotal, "30 pending chapters make ceil(30/25) groups")
		assert.Equal(t, bookfetch.SavePhaseText, snap.SavePhase)
	})

	t.Run("every mutation notifies the callback once", func(t *testing.T) {
		t.Parallel()

		var got []bookfetch.ProgressSnapshot
		r := fetch.NewReporter(10, 1, 0, func(s bookfetch.ProgressSnapshot) {
			got = append(got, s)
		})
		r.IncSaved()
		r.IncGroup()
		r.SetSavePhase(bookfetch.SavePhaseAudiobook)

		assert.Len(t, got, 3)
		assert.Equal(t, 1, got[0].SavedChapters)
		assert.Equal(t, 1, got[1].GroupDone)
		assert.Equal(t, bookfetch.SavePhaseAudiobook, got[2].SavePhase)
	})

	t.Run("comment counters clamp too", func(t *testing.T) {
		t.Parallel()

		r := fetch.NewReporter(10, 1, 0, nil)
		r.InitComments(5, 2)
		for i := 0; i < 10; i++ {
			r.IncCommentFetch()
			r.IncCommentSaved()
		}
		snap := r.Snapshot()
		assert.Equal(t, 5, snap.CommentTotal)
		assert.Equal(t, 5, snap.CommentFetch)
		assert.Equal(t, 5, snap.CommentSaved)
	})

	t.Run("reset save progress clamps to chapter total", func(t *testing.T) {
		t.Parallel()

		r := fetch.NewReporter(10, 1, 0, nil)
		r.ResetSaveProgress(25)
		assert.Equal(t, 10, r.Snapshot().SavedChapters)
		r.ResetSaveProgress(-1)
		assert.Equal(t, 0, r.Snapshot().SavedChapters)
	})
}
