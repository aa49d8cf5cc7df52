package event

import "github.com/dshills/observable/internal/event/dispatch"

var defaultBus = NewBus()

// Default returns the process-wide bus.
func Default() *Bus {
	return defaultBus
}

// On registers h for name on the process-wide bus.
func On(name string, h *dispatch.Handler[any]) error {
	return defaultBus.On(name, h)
}

// Off removes h from name on the process-wide bus.
func Off(name string, h *dispatch.Handler[any]) int {
	return defaultBus.Off(name, h)
}

// ClearAllSubscriptions deletes the channel for name on the process-wide bus.
func ClearAllSubscriptions(name string) bool {
	return defaultBus.ClearAllSubscriptions(name)
}

// Raise raises name on the process-wide bus.
func Raise(name string, data any) error {
	return defaultBus.Raise(name, data)
}

// RaiseSafe raises name on the process-wide bus, suppressing failures.
func RaiseSafe(name string, data any) {
	defaultBus.RaiseSafe(name, data)
}
