package http

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pzhu/bookfetch"
	"golang.org/x/time/rate"
)

// DefaultPrimaryRate paces requests against the primary source at one
// request per second, matching its externally imposed limit.
var DefaultPrimaryRate = rate.Limit(1)

var _ bookfetch.GroupSource = (*PrimarySource)(nil)

// PrimarySource adapts an opaque primary-source request function into a
// GroupSource: it paces calls with a rate limiter and classifies throttling
// responses as cooldown errors the retry policy recognizes. The request
// function's transport and crypto internals stay outside this package.
type PrimarySource struct {
	fn      bookfetch.GroupSourceFunc
	limiter *rate.Limiter
}

// NewPrimarySource wraps a primary request function. A zero or negative rps
// falls back to DefaultPrimaryRate.
func NewPrimarySource(fn bookfetch.GroupSourceFunc, rps rate.Limit) *PrimarySource {
	if rps <= 0 {
		rps = DefaultPrimaryRate
	}
	return &PrimarySource{fn: fn, limiter: rate.NewLimiter(rps, 1)}
}

// FetchGroup waits for the pacing limiter, issues the request, and maps
// throttling failures to ECOOLDOWN.
func (s *PrimarySource) FetchGroup(ctx context.Context, ids string, packaged bool) (json.RawMessage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, bookfetch.Errorf(bookfetch.ECANCELED, "canceled while pacing: %v", err)
	}
	raw, err := s.fn(ctx, ids, packaged)
	if err != nil {
		if IsCooldown(err) {
			return nil, bookfetch.Errorf(bookfetch.ECOOLDOWN, "primary source throttled: %v", err)
		}
		return nil, err
	}
	return raw, nil
}

// IsCooldown reports whether an error is the primary source's throttling
// condition. The upstream signals it by message content, not by a typed
// error, so recognition is textual.
func IsCooldown(err error) bool {
	if err == nil {
		return false
	}
	if bookfetch.ErrorCode(err) == bookfetch.ECOOLDOWN {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Cooldown") ||
		strings.Contains(msg, "CooldownNotReached") ||
		strings.Contains(msg, "429")
}
