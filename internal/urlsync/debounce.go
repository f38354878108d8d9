package urlsync

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before an outbound update is written.
const DefaultDebounce = 300 * time.Millisecond

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules callbacks on real timers.
var SystemClock Clock = systemClock{}

// Debouncer runs fn once after Trigger stops being called for the configured
// delay. Each Trigger supersedes the pending call rather than queueing another.
type Debouncer struct {
	clock Clock
	delay time.Duration
	fn    func()

	mu     sync.Mutex
	timer  Timer
	gen    uint64
	closed bool
}

// NewDebouncer creates a debouncer. A nil clock uses SystemClock and a
// non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, clock Clock, fn func()) *Debouncer {
	if clock == nil {
		clock = SystemClock
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{clock: clock, delay: delay, fn: fn}
}

// Trigger (re)arms the quiet period. It is a no-op after Close.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel drops the pending call and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

// Flush runs the pending call immediately and reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.cancelLocked() {
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	d.fn()
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close cancels the pending call and disables further triggers.
func (d *Debouncer) Close() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	// A callback that already started waiting on the lock sees a newer
	// generation and returns without running.
	d.gen++
	return true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
