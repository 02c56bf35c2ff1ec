package fetch

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pzhu/bookfetch"
	"golang.org/x/sync/errgroup"
)

// probeConcurrency bounds parallel startup probes against the mirror list.
const probeConcurrency = 8

// RequestFunc issues one batch request against a specific mirror endpoint.
type RequestFunc func(ctx context.Context, endpoint, ids string, packaged bool) (json.RawMessage, error)

// EndpointPool is the shared mirror list: an ordered set of endpoint URLs
// with round-robin selection and eviction. Selection uses an atomic cursor;
// list mutation is mutex-guarded so an eviction is visible to every
// subsequent selection across workers. Runtime-only state, rebuilt fresh
// each run from configuration.
type EndpointPool struct {
	mu        sync.Mutex
	endpoints []string
	cursor    atomic.Uint64
}

// NewEndpointPool returns a pool over a copy of the given endpoints.
func NewEndpointPool(endpoints []string) *EndpointPool {
	p := &EndpointPool{endpoints: make([]string, len(endpoints))}
	copy(p.endpoints, endpoints)
	return p
}

// Pick selects the next endpoint round-robin. The second return value is
// false when the pool is empty.
func (p *EndpointPool) Pick() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.endpoints) == 0 {
		return "", false
	}
	idx := (p.cursor.Add(1) - 1) % uint64(len(p.endpoints))
	return p.endpoints[idx], true
}

// Evict removes an endpoint from the pool. Eviction is monotonic within a
// run; an evicted endpoint is never selected again.
func (p *EndpointPool) Evict(endpoint string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, e := range p.endpoints {
		if e == endpoint {
			p.endpoints = append(p.endpoints[:i], p.endpoints[i+1:]...)
			return
		}
	}
}

// Len returns the current pool size.
func (p *EndpointPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}

// Snapshot returns a copy of the current endpoint list.
func (p *EndpointPool) Snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

// PoolPolicy fetches chapter groups through the mirror pool with failover.
// Transport failures retry with backoff without evicting; a response that
// parses but carries no usable content for any requested chapter marks the
// endpoint bad and evicts it. Eviction is content-based rather than
// status-code-based: misconfigured mirrors often answer 200 with an empty
// payload.
type PoolPolicy struct {
	Pool       *EndpointPool
	Request    RequestFunc
	Extractor  bookfetch.ContentExtractor
	MaxRetries int
	Backoff    Backoff
	Logf       LogFunc
}

var _ bookfetch.GroupSource = (*PoolPolicy)(nil)

// FetchGroup requests the comma-joined chapter ids from the pool, rotating
// and evicting endpoints until one yields usable content or the retry
// budget runs out.
func (p *PoolPolicy) FetchGroup(ctx context.Context, ids string, packaged bool) (json.RawMessage, error) {
	retries := p.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		endpoint, ok := p.Pool.Pick()
		if !ok {
			return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "endpoint pool exhausted")
		}

		raw, err := p.Request(ctx, endpoint, ids, packaged)
		if err != nil {
			// Transient network failure is not evidence the endpoint is bad.
			lastErr = err
			if p.Logf != nil {
				p.Logf("endpoint %s failed (attempt %d/%d): %v", endpoint, attempt+1, retries, err)
			}
			if serr := p.Backoff.Sleep(ctx, attempt); serr != nil {
				return nil, bookfetch.Errorf(bookfetch.ECANCELED, "canceled during backoff: %v", serr)
			}
			continue
		}

		if hasUsableContent(p.Extractor.Extract(raw), ids) {
			return raw, nil
		}

		// Parsed fine but contentless for every requested chapter.
		p.Pool.Evict(endpoint)
		lastErr = bookfetch.Errorf(bookfetch.EUNAVAILABLE, "endpoint %s returned no usable content", endpoint)
		if p.Logf != nil {
			p.Logf("evicted endpoint %s, %d remaining", endpoint, p.Pool.Len())
		}
		if serr := p.Backoff.Sleep(ctx, attempt); serr != nil {
			return nil, bookfetch.Errorf(bookfetch.ECANCELED, "canceled during backoff: %v", serr)
		}
	}
	return nil, bookfetch.Errorf(bookfetch.EEXHAUSTED, "group fetch failed after %d attempts: %v", retries, lastErr)
}

// hasUsableContent reports whether the extracted payload carries non-empty
// text for at least one of the requested chapter ids.
func hasUsableContent(contents map[string]bookfetch.ChapterContent, ids string) bool {
	for _, id := range strings.Split(ids, ",") {
		if c, ok := contents[strings.TrimSpace(id)]; ok && strings.TrimSpace(c.Text) != "" {
			return true
		}
	}
	return false
}

// ProbeEndpoints classifies which endpoints currently return usable content
// by requesting a single probe chapter from each, concurrently. Endpoints
// failing the probe are excluded up front; relative order of the survivors
// is preserved.
func ProbeEndpoints(ctx context.Context, endpoints []string, probeID string, packaged bool, request RequestFunc, extractor bookfetch.ContentExtractor) []string {
	good := make([]bool, len(endpoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			raw, err := request(gctx, endpoint, probeID, packaged)
			if err != nil {
				return nil
			}
			good[i] = hasUsableContent(extractor.Extract(raw), probeID)
			return nil
		})
	}
	_ = g.Wait() // probe goroutines never return errors

	var out []string
	for i, ok := range good {
		if ok {
			out = append(out, endpoints[i])
		}
	}
	return out
}
