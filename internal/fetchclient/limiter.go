package fetchclient

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum spacing between requests to the same host.
// Concurrent callers targeting one host serialize through the limiter rather
// than bursting; callers to different hosts do not block each other. There is
// no fairness guarantee beyond the serialized spacing.
type HostLimiter struct {
	mu       sync.Mutex
	spacing  time.Duration
	limiters map[string]*rate.Limiter
}

// DefaultSpacing keeps us comfortably under the ~10 req/s that SEC EDGAR
// tolerates, with margin for other, stricter hosts.
const DefaultSpacing = 1100 * time.Millisecond

// NewHostLimiter creates a limiter with the given minimum inter-request
// spacing per host. A non-positive spacing disables limiting (used in tests).
func NewHostLimiter(spacing time.Duration) *HostLimiter {
	return &HostLimiter{
		spacing:  spacing,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the caller may issue a request to the host of rawURL.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if l.spacing <= 0 {
		return nil
	}
	host := hostOf(rawURL)

	l.mu.Lock()
	lim, ok := l.limiters[host]
	if !ok {
		// Burst of 1: every request pays the full spacing.
		lim = rate.NewLimiter(rate.Every(l.spacing), 1)
		l.limiters[host] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
