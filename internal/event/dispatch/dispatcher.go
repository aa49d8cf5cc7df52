package dispatch

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrorObserver receives failures suppressed by DispatchSafe.
type ErrorObserver func(err error)

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	observer ErrorObserver
}

// WithErrorObserver sets a callback for failures suppressed by DispatchSafe.
// The observer runs synchronously; a panicking observer is recovered.
func WithErrorObserver(fn ErrorObserver) Option {
	return func(c *config) {
		c.observer = fn
	}
}

// subscription is a (handler, predicate) pair.
type subscription[T any] struct {
	handler   *Handler[T]
	predicate *Predicate[T]
}

// Dispatcher delivers payloads to conditional subscriptions in registration
// order. The subscription slice is copy-on-write, so a dispatch iterates the
// list as it was when the dispatch began.
type Dispatcher[T any] struct {
	mu       sync.Mutex
	subs     []subscription[T]
	observer ErrorObserver

	dispatched atomic.Uint64
	delivered  atomic.Uint64
	filtered   atomic.Uint64
	failed     atomic.Uint64
	panicked   atomic.Uint64
	suppressed atomic.Uint64
}

// New creates an empty Dispatcher.
func New[T any](opts ...Option) *Dispatcher[T] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return &Dispatcher[T]{observer: c.observer}
}

// Register adds the (handler, predicate) pair unless it is already present.
// A nil predicate accepts every payload. Registering a duplicate is a no-op.
func (d *Dispatcher[T]) Register(h *Handler[T], p *Predicate[T]) error {
	if h == nil {
		return ErrNilHandler
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexLocked(h, p) >= 0 {
		return nil
	}

	subs := make([]subscription[T], len(d.subs), len(d.subs)+1)
	copy(subs, d.subs)
	d.subs = append(subs, subscription[T]{handler: h, predicate: p})
	return nil
}

// Unregister removes every subscription for h regardless of predicate and
// returns how many were removed.
func (d *Dispatcher[T]) Unregister(h *Handler[T]) int {
	return d.removeWhere(func(s subscription[T]) bool {
		return s.handler == h
	})
}

// UnregisterExact removes only the subscription matching both h and p.
// It returns 1 if a subscription was removed, 0 otherwise.
func (d *Dispatcher[T]) UnregisterExact(h *Handler[T], p *Predicate[T]) int {
	return d.removeWhere(func(s subscription[T]) bool {
		return s.handler == h && s.predicate == p
	})
}

// Has reports whether the exact (handler, predicate) pair is registered.
func (d *Dispatcher[T]) Has(h *Handler[T], p *Predicate[T]) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.indexLocked(h, p) >= 0
}

// Len returns the number of subscriptions.
func (d *Dispatcher[T]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Clear removes all subscriptions.
func (d *Dispatcher[T]) Clear() {
	d.mu.Lock()
	d.subs = nil
	d.mu.Unlock()
}

// Dispatch delivers data to each subscription in order and stops at the first
// failure. A predicate failure is returned as *PredicateError, a handler
// failure as *HandlerError. Later subscriptions are not run.
func (d *Dispatcher[T]) Dispatch(data T) error {
	d.dispatched.Add(1)

	for i, sub := range d.snapshot() {
		switch result, err := execute(sub, data); result {
		case outcomeDelivered:
			d.delivered.Add(1)
		case outcomeFiltered:
			d.filtered.Add(1)
		case outcomePredicateFailed:
			d.recordFailure(err)
			return &PredicateError{Index: i, Err: err}
		case outcomeHandlerFailed:
			d.recordFailure(err)
			return &HandlerError{Index: i, Err: err}
		}
	}
	return nil
}

// DispatchSafe delivers data to every subscription in order. Failures are
// suppressed and reported to the error observer, if any.
func (d *Dispatcher[T]) DispatchSafe(data T) {
	d.dispatched.Add(1)

	for i, sub := range d.snapshot() {
		switch result, err := execute(sub, data); result {
		case outcomeDelivered:
			d.delivered.Add(1)
		case outcomeFiltered:
			d.filtered.Add(1)
		case outcomePredicateFailed:
			d.recordFailure(err)
			d.suppress(&PredicateError{Index: i, Err: err})
		case outcomeHandlerFailed:
			d.recordFailure(err)
			d.suppress(&HandlerError{Index: i, Err: err})
		}
	}
}

// Stats returns dispatch statistics.
func (d *Dispatcher[T]) Stats() Stats {
	return Stats{
		Subscriptions: d.Len(),
		Dispatched:    d.dispatched.Load(),
		Delivered:     d.delivered.Load(),
		Filtered:      d.filtered.Load(),
		Failed:        d.failed.Load(),
		Panicked:      d.panicked.Load(),
		Suppressed:    d.suppressed.Load(),
	}
}

func (d *Dispatcher[T]) snapshot() []subscription[T] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.subs
}

func (d *Dispatcher[T]) indexLocked(h *Handler[T], p *Predicate[T]) int {
	for i, s := range d.subs {
		if s.handler == h && s.predicate == p {
			return i
		}
	}
	return -1
}

func (d *Dispatcher[T]) removeWhere(match func(subscription[T]) bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := make([]subscription[T], 0, len(d.subs))
	for _, s := range d.subs {
		if !match(s) {
			kept = append(kept, s)
		}
	}

	removed := len(d.subs) - len(kept)
	if removed > 0 {
		d.subs = kept
	}
	return removed
}

func (d *Dispatcher[T]) recordFailure(err error) {
	if errors.Is(err, ErrHandlerPanic) {
		d.panicked.Add(1)
		return
	}
	d.failed.Add(1)
}

func (d *Dispatcher[T]) suppress(err error) {
	d.suppressed.Add(1)
	if d.observer == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	d.observer(err)
}
