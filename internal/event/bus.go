package event

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/observable/internal/event/dispatch"
)

// Bus maps event names to channels.
type Bus struct {
	mu       sync.Mutex
	channels map[string]*Channel[any]
	logger   zerolog.Logger
}

// NewBus creates an empty bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Bus{
		channels: make(map[string]*Channel[any]),
		logger:   config.logger,
	}
}

// On registers h for name, creating the channel on first use.
func (b *Bus) On(name string, h *dispatch.Handler[any]) error {
	if h == nil {
		return dispatch.ErrNilHandler
	}
	return b.channelFor(name).On(h)
}

// Off removes h from the channel for name. The channel itself is kept even if
// it becomes empty. It returns the number of subscriptions removed.
func (b *Bus) Off(name string, h *dispatch.Handler[any]) int {
	ch := b.lookup(name)
	if ch == nil {
		return 0
	}
	return ch.Off(h)
}

// ClearAllSubscriptions deletes the channel for name. It reports whether a
// channel existed.
func (b *Bus) ClearAllSubscriptions(name string) bool {
	b.mu.Lock()
	_, ok := b.channels[name]
	delete(b.channels, name)
	b.mu.Unlock()

	if ok {
		b.logger.Debug().Str("event", name).Msg("channel cleared")
	}
	return ok
}

// Raise delivers data to the handlers of name, stopping at the first failure.
// Raising a name with no channel is a no-op.
func (b *Bus) Raise(name string, data any) error {
	ch := b.lookup(name)
	if ch == nil {
		return nil
	}
	return ch.Raise(data)
}

// RaiseSafe delivers data to every handler of name, suppressing failures.
func (b *Bus) RaiseSafe(name string, data any) {
	ch := b.lookup(name)
	if ch == nil {
		return
	}
	ch.RaiseSafe(data)
}

// Has reports whether a channel exists for name.
func (b *Bus) Has(name string) bool {
	return b.lookup(name) != nil
}

// Len returns the number of channels.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.channels)
}

// Names returns the names with a channel, sorted.
func (b *Bus) Names() []string {
	b.mu.Lock()
	names := make([]string, 0, len(b.channels))
	for name := range b.channels {
		names = append(names, name)
	}
	b.mu.Unlock()

	sort.Strings(names)
	return names
}

// Stats returns the delivery statistics of the channel for name.
func (b *Bus) Stats(name string) (dispatch.Stats, bool) {
	ch := b.lookup(name)
	if ch == nil {
		return dispatch.Stats{}, false
	}
	return ch.Stats(), true
}

// Reset deletes every channel.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.channels = make(map[string]*Channel[any])
	b.mu.Unlock()
}

func (b *Bus) lookup(name string) *Channel[any] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels[name]
}

func (b *Bus) channelFor(name string) *Channel[any] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.channels[name]; ok {
		return ch
	}

	logger := b.logger.With().Str("event", name).Logger()
	ch := NewChannel[any](dispatch.WithErrorObserver(func(err error) {
		logger.Debug().Err(err).Msg("suppressed handler failure")
	}))
	b.channels[name] = ch
	logger.Debug().Msg("channel created")
	return ch
}

// OnTyped registers fn for name, adapting it to payloads of type T.
// Payloads of any other type are skipped. The returned handler removes the
// subscription when passed to Off.
func OnTyped[T any](b *Bus, name string, fn func(T) error) (*dispatch.Handler[any], error) {
	h := dispatch.NewHandler(func(data any) error {
		if v, ok := data.(T); ok {
			return fn(v)
		}
		return nil
	})
	if err := b.On(name, h); err != nil {
		return nil, err
	}
	return h, nil
}
