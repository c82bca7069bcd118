package scheduler

import (
	"sync"
	"time"
)

// DefaultPreviewDebounce is the preview stage's default debounce delay.
const DefaultPreviewDebounce = 150 * time.Millisecond

// Debouncer coalesces rapid calls to Trigger into a single fire after
// delay has elapsed with no further calls, using a monotonic generation
// counter rather than timer cancellation.
type Debouncer struct {
	delay time.Duration

	mu  sync.Mutex
	gen uint64
}

// NewDebouncer constructs a Debouncer. A zero delay uses
// DefaultPreviewDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultPreviewDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the debounce delay, superseding any
// previously scheduled call that has not yet fired. A call superseded
// before it fires never invokes fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	d.gen++
	id := d.gen
	d.mu.Unlock()

	time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.gen == id
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}
