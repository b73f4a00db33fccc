package services

import (
	"sync"
	"time"
)

// DefaultRetryAfter applies when a rate-limited reply names no delay.
const DefaultRetryAfter = time.Minute

// Cooldown gates resubmission of a form after the API rate-limited it.
type Cooldown struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

// NewCooldown returns an inactive cooldown. A nil now uses time.Now.
func NewCooldown(now func() time.Time) *Cooldown {
	if now == nil {
		now = time.Now
	}
	return &Cooldown{now: now}
}

// Observe starts the cooldown when r is rate-limited and reports whether it
// did.
func (c *Cooldown) Observe(r Result) bool {
	if !r.RateLimited() {
		return false
	}
	d := r.RetryAfter
	if d <= 0 {
		d = DefaultRetryAfter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = c.now().Add(d)
	return true
}

// Remaining is the time left, rounded up to whole seconds for display.
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	left := c.until.Sub(c.now())
	if left <= 0 {
		return 0
	}
	if r := left % time.Second; r != 0 {
		left += time.Second - r
	}
	return left
}

func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}

func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = time.Time{}
}
