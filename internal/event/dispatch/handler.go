package dispatch

// Handler is a registered callback. Two registrations refer to the same
// handler only if they use the same *Handler value.
type Handler[T any] struct {
	fn func(T) error
}

// NewHandler wraps fn as a Handler.
func NewHandler[T any](fn func(T) error) *Handler[T] {
	return &Handler[T]{fn: fn}
}

// NewObserver wraps a callback that cannot fail.
func NewObserver[T any](fn func(T)) *Handler[T] {
	return &Handler[T]{fn: func(data T) error {
		fn(data)
		return nil
	}}
}

// Handle invokes the wrapped callback. A Handler without a callback is a no-op.
func (h *Handler[T]) Handle(data T) error {
	if h == nil || h.fn == nil {
		return nil
	}
	return h.fn(data)
}

// Predicate gates whether a handler fires for a payload. The nil *Predicate
// is the shared always-true predicate.
type Predicate[T any] struct {
	fn func(T) bool
}

// NewPredicate wraps fn as a Predicate.
func NewPredicate[T any](fn func(T) bool) *Predicate[T] {
	return &Predicate[T]{fn: fn}
}

// Accept reports whether data passes the predicate.
func (p *Predicate[T]) Accept(data T) bool {
	if p == nil || p.fn == nil {
		return true
	}
	return p.fn(data)
}

// Not returns a predicate accepting exactly what p rejects.
func Not[T any](p *Predicate[T]) *Predicate[T] {
	return NewPredicate(func(data T) bool {
		return !p.Accept(data)
	})
}

// And returns a predicate accepting data only if every predicate does.
// Evaluation stops at the first rejection.
func And[T any](preds ...*Predicate[T]) *Predicate[T] {
	return NewPredicate(func(data T) bool {
		for _, p := range preds {
			if !p.Accept(data) {
				return false
			}
		}
		return true
	})
}

// Or returns a predicate accepting data if any predicate does.
func Or[T any](preds ...*Predicate[T]) *Predicate[T] {
	return NewPredicate(func(data T) bool {
		for _, p := range preds {
			if p.Accept(data) {
				return true
			}
		}
		return false
	})
}
