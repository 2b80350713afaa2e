package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum delay between requests to the same host.
type HostLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter // key: host name
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewHostLimiter creates a limiter that spaces consecutive requests to one
// host by minDelay, or by its override when one is configured. A zero delay
// disables limiting for that host.
func NewHostLimiter(minDelay time.Duration, overrides map[string]time.Duration) *HostLimiter {
	return &HostLimiter{
		limiters:  make(map[string]*rate.Limiter),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	delay := l.minDelay
	if d, ok := l.overrides[host]; ok {
		delay = d
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	lim := rate.NewLimiter(limit, 1)
	l.limiters[host] = lim
	return lim
}

// Wait blocks until a request to host is allowed. It returns an error if
// the context is cancelled while waiting.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if err := l.limiterFor(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// Transport wraps base so that every request waits for its host first.
// A nil base uses http.DefaultTransport.
func (l *HostLimiter) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &limitedTransport{base: base, limiter: l}
}

type limitedTransport struct {
	base    http.RoundTripper
	limiter *HostLimiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context(), req.URL.Host); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
