package app

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/event/dispatch"
)

// tracer logs every raise of a configured set of events.
type tracer struct {
	bus      *event.Bus
	logger   zerolog.Logger
	handlers map[string]*dispatch.Handler[any]
}

func newTracer(bus *event.Bus, logger zerolog.Logger) *tracer {
	return &tracer{
		bus:      bus,
		logger:   logger,
		handlers: make(map[string]*dispatch.Handler[any]),
	}
}

// set subscribes to names and drops subscriptions for events no longer listed.
func (t *tracer) set(names []string) error {
	for name, h := range t.handlers {
		if !slices.Contains(names, name) {
			t.bus.Off(name, h)
			delete(t.handlers, name)
		}
	}

	// Re-registering a known handler is a no-op unless its channel was
	// cleared since.
	for _, name := range names {
		h, ok := t.handlers[name]
		if !ok {
			h = t.handlerFor(name)
		}
		if err := t.bus.On(name, h); err != nil {
			return err
		}
		t.handlers[name] = h
	}
	return nil
}

func (t *tracer) handlerFor(name string) *dispatch.Handler[any] {
	return dispatch.NewObserver(func(data any) {
		t.logger.Info().
			Str("event", name).
			Interface("data", data).
			Msg("event raised")
	})
}

// traced returns the traced event names, sorted.
func (t *tracer) traced() []string {
	names := make([]string, 0, len(t.handlers))
	for name := range t.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
