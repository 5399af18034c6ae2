package validate

import (
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"
)

// Debouncer collapses calls made within the quiet period into a single
// trailing call carrying the last argument. Every Call restarts the wait.
type Debouncer[T any] struct {
	fn    func(T)
	wait  time.Duration
	clock clock.WithDelayedExecution

	mu    sync.Mutex
	timer clock.Timer
	gen   atomic.Uint64
}

func NewDebouncer[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	return NewDebouncerWithClock(clock.RealClock{}, wait, fn)
}

func NewDebouncerWithClock[T any](c clock.WithDelayedExecution, wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		fn:    fn,
		wait:  wait,
		clock: c,
	}
}

func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	gen := d.gen.Add(1)
	d.timer = d.clock.AfterFunc(d.wait, func() {
		// A superseded timer that already fired must not run.
		if d.gen.Load() == gen {
			d.fn(arg)
		}
	})
}

// Stop drops the pending call, if any.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen.Add(1)
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
