package event_test

import (
	"fmt"

	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/event/dispatch"
)

// Example_basicUsage demonstrates named events on an explicit bus.
func Example_basicUsage() {
	bus := event.NewBus()

	h := dispatch.NewObserver(func(data any) {
		fmt.Println("saved:", data)
	})
	_ = bus.On("document.saved", h)
	_ = bus.On("document.saved", h) // duplicate, ignored

	_ = bus.Raise("document.saved", "notes.txt")

	bus.Off("document.saved", h)
	_ = bus.Raise("document.saved", "ignored.txt")

	// Output:
	// saved: notes.txt
}

// Example_conditional demonstrates predicate-gated subscriptions.
func Example_conditional() {
	d := dispatch.New[int]()
	even := dispatch.NewPredicate(func(n int) bool { return n%2 == 0 })

	_ = d.Register(dispatch.NewObserver(func(n int) {
		fmt.Println("even:", n)
	}), even)

	for n := 0; n < 5; n++ {
		_ = d.Dispatch(n)
	}

	// Output:
	// even: 0
	// even: 2
	// even: 4
}
