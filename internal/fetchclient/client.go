package fetchclient

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client is the shared polite fetch primitive: cache-first, per-host rate
// limited, bounded retries with exponential backoff and jitter. All source
// adapters go through a single Client so the politeness budget is global.
type Client struct {
	identity    string
	cache       *DiskCache
	limiter     *HostLimiter
	httpClient  *http.Client
	ttl         time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// Result is the outcome of a successful Fetch.
type Result struct {
	Body      []byte
	FromCache bool
	Meta      Meta
}

// Options tweaks a single Fetch call.
type Options struct {
	// TTL overrides the client default cache TTL when > 0.
	TTL time.Duration
	// NoCache skips the cache lookup (the response is still written back).
	NoCache bool
}

const (
	defaultTTL         = 7 * 24 * time.Hour
	defaultMaxAttempts = 5
	defaultBaseDelay   = 400 * time.Millisecond
	defaultMaxDelay    = 10 * time.Second
)

// NewClient creates a fetch client. identity must be a contact-bearing
// string (who to email when our traffic is a problem); an empty identity is
// a configuration error, not something to paper over at call time.
func NewClient(identity string, cache *DiskCache, limiter *HostLimiter) (*Client, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}
	return &Client{
		identity:    identity,
		cache:       cache,
		limiter:     limiter,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		ttl:         defaultTTL,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}, nil
}

// SetRetryPolicy overrides attempt count and backoff bounds (also used by
// tests to keep backoff short).
func (c *Client) SetRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) {
	if maxAttempts > 0 {
		c.maxAttempts = maxAttempts
	}
	if baseDelay > 0 {
		c.baseDelay = baseDelay
	}
	if maxDelay > 0 {
		c.maxDelay = maxDelay
	}
}

// SetTTL overrides the default cache TTL.
func (c *Client) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		c.ttl = ttl
	}
}

// transient statuses get retried; everything else non-2xx fails immediately.
// 403 is included because SEC EDGAR answers over-rate traffic with 403
// rather than 429.
func isTransient(status int) bool {
	switch status {
	case http.StatusForbidden, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Fetch retrieves url, serving from the durable cache when a fresh entry
// exists. On a network fetch the body is cached before returning.
func (c *Client) Fetch(ctx context.Context, url string, opts Options) (*Result, error) {
	ttl := c.ttl
	if opts.TTL > 0 {
		ttl = opts.TTL
	}

	if !opts.NoCache && c.cache != nil {
		if body, meta, ok := c.cache.Get(url, ttl); ok {
			return &Result{Body: body, FromCache: true, Meta: *meta}, nil
		}
	}

	var lastStatus int
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// The limiter applies before every network attempt, retries
		// included, so backoff never lets us burst past the host budget.
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, url); err != nil {
				return nil, err
			}
		}

		body, status, contentType, err := c.do(ctx, url)
		if err != nil {
			lastErr = err
			lastStatus = 0
			log.WithFields(log.Fields{"url": url, "attempt": attempt}).
				Warnf("fetch network error: %v", err)
		} else if status >= 200 && status < 300 {
			meta := Meta{URL: url, FetchedAt: time.Now(), Status: status, ContentType: contentType}
			if c.cache != nil {
				if err := c.cache.Put(url, body, meta); err != nil {
					log.Warnf("failed to cache %s: %v", url, err)
				}
			}
			return &Result{Body: body, FromCache: false, Meta: meta}, nil
		} else if isTransient(status) {
			lastStatus = status
			lastErr = nil
			log.WithFields(log.Fields{"url": url, "status": status, "attempt": attempt}).
				Warn("fetch transient status, will retry")
		} else {
			return nil, &FatalHTTPError{URL: url, StatusCode: status, Body: string(body)}
		}

		if attempt == c.maxAttempts {
			break
		}
		if err := sleepCtx(ctx, c.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, &RetriesExhaustedError{URL: url, Attempts: c.maxAttempts, LastStatus: lastStatus, LastErr: lastErr}
}

// backoff returns the delay before attempt n+1: base doubling per attempt,
// capped, plus uniform jitter below one base unit so the sequence stays
// strictly increasing while desynchronizing concurrent workers.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseDelay << (attempt - 1)
	if d > c.maxDelay {
		d = c.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(c.baseDelay)))
	return d + jitter
}

func (c *Client) do(ctx context.Context, url string) ([]byte, int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, "", err
	}
	req.Header.Set("User-Agent", c.identity)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", err
	}
	return body, resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
