package pipeline

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/seoentity/seoentity"
	"golang.org/x/time/rate"
)

// DomainLimiter spaces out fetches per host using token buckets. Requests
// to different hosts proceed independently.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps fetches per second
// for each host, with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a fetch of rawURL is allowed.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)

	d.mu.Lock()
	limiter, ok := d.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[host] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Limit wraps fetch so every call waits for its host's turn.
func (d *DomainLimiter) Limit(fetch FetchFunc) FetchFunc {
	return func(ctx context.Context, rawURL string) (string, error) {
		if err := d.Wait(ctx, rawURL); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", seoentity.Errorf(seoentity.EUNAVAILABLE, "rate limit: %s", err)
		}
		return fetch(ctx, rawURL)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
