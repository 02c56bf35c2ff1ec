// Package http provides the HTTP-based upstream clients: the mirror batch
// content client, the rate-limited primary source wrapper, and the chapter
// directory client.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pzhu/bookfetch"
)

// Defaults for the content client.
const (
	DefaultRequestTimeout = 15 * time.Second
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
)

// ContentClient issues batch chapter requests against mirror endpoints. One
// client serves every endpoint in the pool; the endpoint is chosen per call.
type ContentClient struct {
	client *http.Client
}

// ContentOption configures a ContentClient.
type ContentOption func(*contentConfig)

type contentConfig struct {
	requestTimeout time.Duration
	connectTimeout time.Duration
}

// WithRequestTimeout bounds one request end-to-end. Defaults to
// DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) ContentOption {
	return func(c *contentConfig) {
		c.requestTimeout = d
	}
}

// WithConnectTimeout bounds connection establishment separately; zero leaves
// only the request timeout in force.
func WithConnectTimeout(d time.Duration) ContentOption {
	return func(c *contentConfig) {
		c.connectTimeout = d
	}
}

// NewContentClient creates a mirror batch client.
func NewContentClient(opts ...ContentOption) *ContentClient {
	cfg := contentConfig{requestTimeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.connectTimeout > 0 {
		transport.DialContext = (&net.Dialer{Timeout: cfg.connectTimeout}).DialContext
	}
	return &ContentClient{
		client: &http.Client{
			Timeout:   cfg.requestTimeout,
			Transport: transport,
		},
	}
}

// FetchGroup requests the comma-joined chapter ids from one endpoint and
// returns the raw JSON payload. Matches the engine's per-endpoint request
// signature.
func (c *ContentClient) FetchGroup(ctx context.Context, endpoint, ids string, packaged bool) (json.RawMessage, error) {
	ids = strings.TrimSpace(ids)
	if ids == "" {
		return nil, bookfetch.Errorf(bookfetch.EINVALID, "chapter ids required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, batchURL(endpoint, ids, packaged), nil)
	if err != nil {
		return nil, bookfetch.Errorf(bookfetch.EINVALID, "building batch request: %v", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "requesting %s: %v", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "HTTP %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "reading response from %s: %v", endpoint, err)
	}
	if !json.Valid(body) {
		return nil, bookfetch.Errorf(bookfetch.EUNAVAILABLE, "non-JSON response from %s", endpoint)
	}
	return json.RawMessage(body), nil
}

// batchURL derives the batch_full request URL for an endpoint. Endpoints may
// be a bare host or already carry the batch_full path; either way the query
// keeps its commas unescaped since item_ids is comma-separated.
func batchURL(endpoint, ids string, packaged bool) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.Contains(base, "/reading/reader/batch_full") {
		base += "/reading/reader/batch_full/v"
	}
	switch {
	case strings.HasSuffix(base, "?") || strings.HasSuffix(base, "&"):
	case strings.Contains(base, "?"):
		base += "&"
	default:
		base += "?"
	}

	epub := "0"
	extra := ""
	if packaged {
		epub = "1"
		extra = "&version_code=0"
	}
	return fmt.Sprintf("%sitem_ids=%s&update_version_code=0&aid=1967&key_register_ts=0&device_platform=android&iid=0&epub=%s%s",
		base, ids, epub, extra)
}
