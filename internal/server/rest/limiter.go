package rest

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter keeps one token bucket per key (client address plus identifier).
// A bucket idle long enough to refill is indistinguishable from a new one,
// so such buckets are swept out.
type limiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	buckets   map[string]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiter(perMinute, burst int) *limiter {
	if burst < 1 {
		burst = 1
	}
	every := time.Minute / time.Duration(max(perMinute, 1))
	return &limiter{
		limit:   rate.Every(every),
		burst:   burst,
		idle:    every * time.Duration(burst),
		buckets: map[string]*bucket{},
	}
}

// allow takes a token for key. When none is left it returns false and the
// whole seconds until the next one.
func (l *limiter) allow(key string, now time.Time) (bool, int) {
	l.mu.Lock()
	l.sweep(now)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	r := b.lim.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, int(math.Ceil(delay.Seconds()))
}

// sweep drops idle buckets, at most once per idle period. l.mu must be held.
func (l *limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, k)
		}
	}
}
