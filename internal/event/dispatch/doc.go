// Package dispatch provides the conditional dispatcher used by the event and
// observable packages.
//
// A Dispatcher holds an ordered list of subscriptions. Each subscription pairs
// a Handler with an optional Predicate; the handler runs for a payload only if
// the predicate accepts it. A nil predicate always accepts.
//
// # Identity
//
// Go function values cannot be compared, so callbacks are wrapped once and the
// wrapper pointer identifies the subscription:
//
//	h := dispatch.NewHandler(func(n int) error { ... })
//	even := dispatch.NewPredicate(func(n int) bool { return n%2 == 0 })
//
//	d := dispatch.New[int]()
//	d.Register(h, even)
//	d.Register(h, even) // duplicate, ignored
//	d.Register(h, nil)  // distinct subscription
//
// Unregister removes every subscription for a handler. UnregisterExact removes
// only the subscription matching both handler and predicate.
//
// # Delivery
//
// Subscriptions run in registration order on the caller's goroutine.
//
//   - Dispatch is fail-fast: the first predicate or handler failure stops
//     delivery and is returned to the caller.
//   - DispatchSafe is fail-safe: failures are counted, reported to the
//     optional error observer and otherwise discarded.
//
// Panics raised by handlers or predicates are recovered and reported as
// *PanicError values, wrapped like any other failure.
//
// Registering or unregistering from inside a handler is allowed. A dispatch in
// progress keeps iterating the subscription list as it was when it started.
package dispatch
