// Package debounce delays keyed work until input settles, e.g. live
// availability checks while a registration form is being typed.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is used when a Debouncer is created with a non-positive
// delay.
const DefaultDelay = 500 * time.Millisecond

type entry struct {
	timer  *time.Timer
	cancel context.CancelFunc
	seq    uint64
}

// Debouncer runs the latest submitted function per key once Delay has
// passed without a newer submission. A newer submission also cancels the
// context of a call already running for that key, so its result can be
// dropped.
type Debouncer struct {
	Delay time.Duration

	mu      sync.Mutex
	base    context.Context
	stop    context.CancelFunc
	entries map[string]*entry
	seq     uint64
}

func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	base, stop := context.WithCancel(context.Background())
	return &Debouncer{
		Delay:   delay,
		base:    base,
		stop:    stop,
		entries: make(map[string]*entry),
	}
}

// Submit schedules fn for key, replacing any pending or running call for
// the same key.
func (d *Debouncer) Submit(key string, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.base.Err() != nil {
		return
	}
	if e, ok := d.entries[key]; ok {
		e.timer.Stop()
		e.cancel()
	}

	d.seq++
	ctx, cancel := context.WithCancel(d.base)
	e := &entry{cancel: cancel, seq: d.seq}
	e.timer = time.AfterFunc(d.Delay, func() {
		defer d.done(key, e)
		if ctx.Err() == nil {
			fn(ctx)
		}
	})
	d.entries[key] = e
}

func (d *Debouncer) done(key string, e *entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.entries[key]; ok && cur.seq == e.seq {
		delete(d.entries, key)
	}
	e.cancel()
}

// Cancel drops the pending or running call for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[key]; ok {
		e.timer.Stop()
		e.cancel()
		delete(d.entries, key)
	}
}

// Stop cancels everything; later submissions are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stop()
	for key, e := range d.entries {
		e.timer.Stop()
		delete(d.entries, key)
	}
}
