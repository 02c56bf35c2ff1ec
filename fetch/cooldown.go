package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/pzhu/bookfetch"
)

// Cooldown retry defaults. The primary source throttles aggressively; the
// schedule starts just above its one-second window and doubles to a ceiling.
const (
	DefaultCooldownAttempts = 6
	DefaultCooldownBase     = 1100 * time.Millisecond
	DefaultCooldownCap      = 8 * time.Second
)

// runtimeHintShown guards the one-time remediation hint for a missing native
// runtime dependency. Process-scoped because every policy instance talks to
// the same host environment.
var runtimeHintShown atomic.Bool

// CooldownPolicy decorates a rate-limited primary source with cooldown-aware
// retries. Throttling errors (ECOOLDOWN) are retried with doubling delay up
// to the attempt cap; any other failure is surfaced immediately. The policy
// has no cross-worker shared state since the primary source is one logical
// endpoint.
type CooldownPolicy struct {
	Source   bookfetch.GroupSource
	Attempts int
	Backoff  Backoff
	Logf     LogFunc
}

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

var _ bookfetch.GroupSource = (*CooldownPolicy)(nil)

// FetchGroup issues the request through the wrapped source, sleeping and
// retrying while the source reports a cooldown.
func (p *CooldownPolicy) FetchGroup(ctx context.Context, ids string, packaged bool) (json.RawMessage, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = DefaultCooldownAttempts
	}
	backoff := p.Backoff
	if backoff.Base <= 0 {
		backoff = Backoff{Base: DefaultCooldownBase, Cap: DefaultCooldownCap}
	}

	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := p.Source.FetchGroup(ctx, ids, packaged)
		if err == nil {
			return raw, nil
		}
		if bookfetch.ErrorCode(err) != bookfetch.ECOOLDOWN {
			return nil, annotateRuntimeHint(err)
		}
		if attempt == attempts-1 {
			break
		}
		if p.Logf != nil {
			p.Logf("primary source cooling down, retrying in %s (attempt %d/%d)", backoff.Delay(attempt), attempt+1, attempts)
		}
		if err := backoff.Sleep(ctx, attempt); err != nil {
			return nil, bookfetch.Errorf(bookfetch.ECANCELED, "canceled while waiting out cooldown: %v", err)
		}
	}
	return nil, bookfetch.Errorf(bookfetch.EEXHAUSTED, "primary source still cooling down after %d attempts", attempts)
}

// annotateRuntimeHint attaches a remediation hint to the first failure that
// indicates the native decryption helper is missing from the host.
func annotateRuntimeHint(err error) error {
	if !errors.Is(err, exec.ErrNotFound) {
		return err
	}
	if bookfetch.Prewarmed() || runtimeHintShown.Swap(true) {
		return err
	}
	return bookfetch.Errorf(bookfetch.EINTERNAL,
		"%s (the decryption helper needs a Node.js runtime on PATH; install one and retry)",
		bookfetch.ErrorMessage(err))
}
