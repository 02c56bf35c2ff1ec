// Package fetch implements the resilient chapter retrieval engine: retry
// policies for the primary source and the mirror endpoint pool, the grouped
// concurrent fetch pool, progress reporting, and the download orchestrator.
package fetch

import (
	"context"
	"time"
)

// Backoff computes exponential delays parameterized by a base delay and a
// ceiling. The delay is a pure function of the attempt number.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay returns Base*2^min(attempt,10), capped at Cap. Attempt numbering
// starts at 0. The exponent clamp keeps the shift from overflowing on
// runaway attempt counts.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 10 {
		attempt = 10
	}
	d := b.Base << uint(attempt)
	if b.Cap > 0 && d > b.Cap {
		d = b.Cap
	}
	return d
}

// Sleep waits for Delay(attempt) or until the context is done, whichever
// comes first.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.Delay(attempt)):
		return nil
	}
}
