package console

import (
	"sync"
	"time"
)

const (
	// DefaultSearchDelay is the quiet window for the free-text search box.
	DefaultSearchDelay = 500 * time.Millisecond
	// SecondaryDelay is the quiet window for slower-changing filter inputs.
	SecondaryDelay = time.Second
)

// Debouncer coalesces a burst of input edits into a single commit. The raw
// value updates immediately on every Input; the commit callback fires once
// the input has been quiet for the configured delay. Flush commits the
// pending value immediately (the Enter key path). After Stop no commit ever
// fires again.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	commit func(string)

	timer   *time.Timer
	value   string
	dirty   bool
	gen     uint64
	stopped bool
}

// NewDebouncer constructs a debouncer that calls commit after the quiet window.
func NewDebouncer(delay time.Duration, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDelay
	}
	if commit == nil {
		commit = func(string) {}
	}
	return &Debouncer{
		delay:  delay,
		commit: commit,
	}
}

// Input records a new raw value and restarts the quiet window.
func (d *Debouncer) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.value = value
	d.dirty = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

// fire commits the pending value unless a newer Input superseded this timer.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || !d.dirty {
		d.mu.Unlock()
		return
	}
	value := d.value
	d.dirty = false
	d.timer = nil
	d.mu.Unlock()

	d.commit(value)
}

// Flush commits the pending value immediately, cancelling the timer. It is a
// no-op when nothing is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.dirty {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	value := d.value
	d.dirty = false
	d.mu.Unlock()

	d.commit(value)
}

// Value returns the latest raw input, committed or not.
func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Stop tears the debouncer down; no commit fires afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
