package render

import (
	"context"
	"sync"

	"github.com/oser-cs/apiview"
	"golang.org/x/time/rate"
)

var _ apiview.OriginLimiter = (*Throttle)(nil)

// Throttle keeps one token bucket per API origin. Each origin may send
// burst requests at once and then rps requests per second.
type Throttle struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewThrottle returns a Throttle allowing rps requests per second per origin.
// A non-positive rps disables throttling; burst is raised to at least 1.
func NewThrottle(rps float64, burst int) *Throttle {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &Throttle{
		limit:   limit,
		burst:   max(burst, 1),
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until origin has a token. A wait that cannot finish before
// ctx's deadline fails immediately with ctx's error.
func (t *Throttle) Wait(ctx context.Context, origin string) error {
	if err := t.bucket(origin).Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return context.DeadlineExceeded
	}
	return nil
}

// Origins returns how many origins have been seen.
func (t *Throttle) Origins() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

func (t *Throttle) bucket(origin string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buckets[origin]
	if !ok {
		b = rate.NewLimiter(t.limit, t.burst)
		t.buckets[origin] = b
	}
	return b
}
