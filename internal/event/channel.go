package event

import "github.com/dshills/observable/internal/event/dispatch"

// Channel is a dispatcher restricted to unconditional subscriptions.
type Channel[T any] struct {
	d *dispatch.Dispatcher[T]
}

// NewChannel creates an empty Channel.
func NewChannel[T any](opts ...dispatch.Option) *Channel[T] {
	return &Channel[T]{d: dispatch.New[T](opts...)}
}

// On registers h. Registering the same handler twice is a no-op.
func (c *Channel[T]) On(h *dispatch.Handler[T]) error {
	return c.d.Register(h, nil)
}

// OnFunc registers fn and returns the handler needed to remove it.
func (c *Channel[T]) OnFunc(fn func(T)) *dispatch.Handler[T] {
	h := dispatch.NewObserver(fn)
	_ = c.d.Register(h, nil)
	return h
}

// Off removes h and returns the number of subscriptions removed.
func (c *Channel[T]) Off(h *dispatch.Handler[T]) int {
	return c.d.Unregister(h)
}

// Raise delivers data to every handler and stops at the first failure.
func (c *Channel[T]) Raise(data T) error {
	return c.d.Dispatch(data)
}

// RaiseSafe delivers data to every handler, suppressing failures.
func (c *Channel[T]) RaiseSafe(data T) {
	c.d.DispatchSafe(data)
}

// Len returns the number of handlers.
func (c *Channel[T]) Len() int {
	return c.d.Len()
}

// Clear removes every handler.
func (c *Channel[T]) Clear() {
	c.d.Clear()
}

// Stats returns delivery statistics.
func (c *Channel[T]) Stats() dispatch.Stats {
	return c.d.Stats()
}
