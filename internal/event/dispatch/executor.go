package dispatch

import "runtime/debug"

// outcome is the result of running one subscription.
type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeFiltered
	outcomePredicateFailed
	outcomeHandlerFailed
)

// execute evaluates the predicate and, if it accepts, runs the handler.
// Panics from either callback are recovered into *PanicError.
func execute[T any](sub subscription[T], data T) (outcome, error) {
	accepted, err := evaluate(sub.predicate, data)
	if err != nil {
		return outcomePredicateFailed, err
	}
	if !accepted {
		return outcomeFiltered, nil
	}
	if err := run(sub.handler, data); err != nil {
		return outcomeHandlerFailed, err
	}
	return outcomeDelivered, nil
}

func evaluate[T any](p *Predicate[T], data T) (accepted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			accepted = false
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return p.Accept(data), nil
}

func run[T any](h *Handler[T], data T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return h.Handle(data)
}
