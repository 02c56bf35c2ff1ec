package bookfetch

import (
	"strings"
	"time"
)

// Config carries the tunable values the fetch engine consumes. Front ends
// are responsible for populating it (flags, environment, config files).
type Config struct {
	// UsePrimary selects the rate-limited primary source; when false the
	// mirror endpoint pool is used instead.
	UsePrimary bool

	// Endpoints is the mirror pool, required when UsePrimary is false.
	Endpoints []string

	// RequestTimeout bounds one upstream request end-to-end.
	RequestTimeout time.Duration

	// ConnectTimeout bounds connection establishment; zero disables the
	// separate connect bound.
	ConnectTimeout time.Duration

	// MaxRetries caps attempts per group against the mirror pool.
	MaxRetries int

	// MinWait and MaxWait bound the mirror backoff schedule.
	MinWait time.Duration
	MaxWait time.Duration

	// MaxWorkers bounds concurrent group fetches.
	MaxWorkers int

	// Format selects the output flavor ("txt" or "epub").
	Format string

	// EnableComments turns on the supplementary comment-fetch phase.
	EnableComments bool

	// CommentWorkers bounds the comment pool; clamped to [1,8].
	CommentWorkers int

	// SaveDir is the root directory for per-book folders.
	SaveDir string
}

// Defaults for Config fields left at their zero value.
const (
	DefaultRequestTimeout = 15 * time.Second
	DefaultMaxRetries     = 3
	DefaultMinWait        = 250 * time.Millisecond
	DefaultMaxWait        = 8 * time.Second
	DefaultMaxWorkers     = 1
)

// Packaged reports whether the output format wants packaged (XHTML) chapter
// bodies rather than plain text.
func (c *Config) Packaged() bool {
	return strings.EqualFold(c.Format, "epub")
}

// Workers returns the effective worker count, never below 1.
func (c *Config) Workers() int {
	if c.MaxWorkers < 1 {
		return DefaultMaxWorkers
	}
	return c.MaxWorkers
}

// Retries returns the effective per-group attempt cap, never below 1.
func (c *Config) Retries() int {
	if c.MaxRetries < 1 {
		return 1
	}
	return c.MaxRetries
}

// Timeout returns the effective request timeout.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return c.RequestTimeout
}

// WaitBounds returns the effective backoff bounds with MaxWait never below
// MinWait.
func (c *Config) WaitBounds() (min, max time.Duration) {
	min = c.MinWait
	if min <= 0 {
		min = DefaultMinWait
	}
	max = c.MaxWait
	if max < min {
		max = min
	}
	return min, max
}

// Validate returns an error if the configuration cannot drive a download.
func (c *Config) Validate() error {
	if !c.UsePrimary && len(c.Endpoints) == 0 {
		return Errorf(EINVALID, "endpoints required when primary source is disabled")
	}
	if c.SaveDir == "" {
		return Errorf(EINVALID, "save directory required")
	}
	return nil
}
