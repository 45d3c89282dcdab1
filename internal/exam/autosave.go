package exam

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of state changes into a single flush that
// fires once the state has been quiet for the configured delay. A
// pending flush can be cancelled, or forced synchronously so nothing is
// lost on a clean exit.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	flush   func()
}

func newDebouncer(delay time.Duration, flush func()) *debouncer {
	return &debouncer{delay: delay, flush: flush}
}

// Mark notes a state change and (re)arms the flush timer.
func (d *debouncer) Mark() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.flush()
}

// Flush runs a pending flush immediately, if any.
func (d *debouncer) Flush() {
	d.fire()
}

// Cancel drops any pending flush without running it.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
