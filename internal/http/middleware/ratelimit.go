package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localLimiter is the in-process token bucket used when Redis is not
// configured or unreachable. One bucket per scope and client.
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLocalLimiter(maxRequests int, window time.Duration) *localLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &localLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		// crude bound on memory; buckets refill quickly anyway
		if len(l.limiters) > 10000 {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
