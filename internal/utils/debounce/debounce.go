// Package debounce coalesces rapid value changes into one trailing update.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDelay is the quiet period used when New is given a non-positive delay.
const DefaultDelay = 300 * time.Millisecond

// Option configures a Debouncer.
type Option func(*options)

type options struct {
	clock clockwork.Clock
}

// WithClock sets the clock the countdown timers are scheduled on.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// Debouncer exposes the most recently settled value of a stream of inputs.
// Every Set restarts the countdown; only a countdown that elapses without a
// newer Set updates the value. It is safe for concurrent use.
type Debouncer[T any] struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	delay     time.Duration
	value     T
	pending   clockwork.Timer
	gen       uint64
	stopped   bool
	observers []func(T)
}

// New creates a Debouncer whose settled value starts as initial.
func New[T any](initial T, delay time.Duration, opts ...Option) *Debouncer[T] {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		clock:  o.clock,
		delay:  delay,
		value: initial,
	}
}

// Set records v as the latest input and restarts the countdown.
// It is a no-op after Stop.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	if d.pending != nil {
		d.pending.Stop()
	}
	d.pending = d.clock.AfterFunc(d.delay, func() {
		d.settle(gen, v)
	})
}

// settle applies v if no newer Set or Stop happened since its countdown started.
// A timer that already fired when it was cancelled is discarded here.
func (d *Debouncer[T]) settle(gen uint64, v T) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.value = v
	d.pending = nil
	observers := make([]func(T), len(d.observers))
	copy(observers, d.observers)
	d.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}

// Value returns the settled value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Pending reports whether a countdown is running.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// OnSettle registers fn to be called, outside the lock, each time a value settles.
func (d *Debouncer[T]) OnSettle(fn func(T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// Stop cancels any pending countdown. No value settles after Stop returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
