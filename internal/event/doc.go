// Package event provides unconditional event channels and a named event bus.
//
// A Channel is a dispatcher whose subscriptions carry no predicate: every
// handler fires for every payload. A Bus maps event names to lazily created
// channels so that components can publish and subscribe without holding
// references to each other.
//
// # Basic Usage
//
//	bus := event.NewBus(event.WithLogger(logger))
//
//	h := dispatch.NewObserver(func(data any) {
//	    fmt.Println("saved:", data)
//	})
//	bus.On("document.saved", h)
//
//	// Fail-fast: the first handler error is returned.
//	if err := bus.Raise("document.saved", doc); err != nil {
//	    return err
//	}
//
//	// Fail-safe: every handler runs, failures are logged and dropped.
//	bus.RaiseSafe("document.saved", doc)
//
// # Typed Handlers
//
// OnTyped adapts a handler for a concrete payload type. Payloads of another
// type are skipped.
//
//	event.OnTyped(bus, "cursor.moved", func(p Position) error { ... })
//
// # Lifecycle
//
// A channel is created by the first On for its name. Off never deletes a
// channel, even when it becomes empty; ClearAllSubscriptions deletes it.
// Raising a name without a channel is a no-op.
//
// # Process-wide Bus
//
// Default returns a bus shared by the whole process, and the package-level
// On, Off, Raise, RaiseSafe and ClearAllSubscriptions functions operate on
// it. Prefer passing an explicit *Bus where ownership is clear.
//
// # Thread Safety
//
// The bus serializes access to its name map; it never holds its lock while
// handlers run. Handlers run synchronously on the raising goroutine.
package event
