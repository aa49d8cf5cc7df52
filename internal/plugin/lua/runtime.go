package lua

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/event/dispatch"
)

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeLogger sets the logger for the runtime and its print output.
func WithRuntimeLogger(l zerolog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithName labels the runtime, usually with its script path.
func WithName(name string) RuntimeOption {
	return func(r *Runtime) {
		r.name = name
	}
}

// WithStateOptions passes options to the underlying State.
func WithStateOptions(opts ...StateOption) RuntimeOption {
	return func(r *Runtime) {
		r.stateOpts = append(r.stateOpts, opts...)
	}
}

type subscription struct {
	name    string
	handler *dispatch.Handler[any]
}

// Runtime binds a Lua state to an event bus. Handlers registered by the
// script stay on the bus until Close.
type Runtime struct {
	id     string
	name   string
	bus    *event.Bus
	logger zerolog.Logger

	state     *State
	stateOpts []StateOption
	bridge    *Bridge

	// handlers memoises one bus handler per Lua function.
	handlers map[*lua.LFunction]*dispatch.Handler[any]
	subs     map[subscription]struct{}
}

// NewRuntime creates a runtime with the events and dict modules installed.
func NewRuntime(bus *event.Bus, opts ...RuntimeOption) (*Runtime, error) {
	r := &Runtime{
		id:       uuid.NewString(),
		bus:      bus,
		logger:   zerolog.Nop(),
		handlers: make(map[*lua.LFunction]*dispatch.Handler[any]),
		subs:     make(map[subscription]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	ctx := r.logger.With().Str("runtime", r.id)
	if r.name != "" {
		ctx = ctx.Str("script", r.name)
	}
	r.logger = ctx.Logger()

	state, err := NewState(append(r.stateOpts, WithLogger(r.logger))...)
	if err != nil {
		return nil, err
	}
	r.state = state
	r.bridge = NewBridge(state.L)

	r.installEvents(state.L)
	r.installDict(state.L)
	return r, nil
}

// ID returns the runtime's unique id.
func (r *Runtime) ID() string {
	return r.id
}

// Name returns the label given with WithName.
func (r *Runtime) Name() string {
	return r.name
}

// State returns the underlying Lua state.
func (r *Runtime) State() *State {
	return r.state
}

// DoFile runs a script file.
func (r *Runtime) DoFile(ctx context.Context, path string) error {
	return r.state.DoFile(ctx, path)
}

// DoString runs a Lua chunk.
func (r *Runtime) DoString(ctx context.Context, code string) error {
	return r.state.DoString(ctx, code)
}

// Subscriptions returns the number of bus subscriptions the script holds.
func (r *Runtime) Subscriptions() int {
	return len(r.subs)
}

// Close removes every subscription the script made and closes the state.
func (r *Runtime) Close() {
	if r.state.IsClosed() {
		return
	}
	for sub := range r.subs {
		r.bus.Off(sub.name, sub.handler)
	}
	clear(r.subs)
	clear(r.handlers)
	r.state.Close()
	r.logger.Debug().Msg("runtime closed")
}

func (r *Runtime) installEvents(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"on":         r.luaOn,
		"off":        r.luaOff,
		"clear":      r.luaClear,
		"raise":      r.luaRaise,
		"raise_safe": r.luaRaiseSafe,
		"has":        r.luaHas,
	})
	L.SetGlobal("events", mod)
}

// handlerFor returns the bus handler for fn, creating it on first use.
func (r *Runtime) handlerFor(fn *lua.LFunction) *dispatch.Handler[any] {
	if h, ok := r.handlers[fn]; ok {
		return h
	}
	h := dispatch.NewHandler(func(data any) error {
		return r.state.Call(context.Background(), fn, r.bridge.ToLuaValue(data))
	})
	r.handlers[fn] = h
	return h
}

func (r *Runtime) luaOn(L *lua.LState) int {
	name := L.CheckString(1)
	h := r.handlerFor(L.CheckFunction(2))

	if err := r.bus.On(name, h); err != nil {
		L.RaiseError("events.on: %v", err)
		return 0
	}
	r.subs[subscription{name: name, handler: h}] = struct{}{}
	return 0
}

func (r *Runtime) luaOff(L *lua.LState) int {
	name := L.CheckString(1)
	h, ok := r.handlers[L.CheckFunction(2)]
	if !ok {
		L.Push(lua.LNumber(0))
		return 1
	}

	n := r.bus.Off(name, h)
	delete(r.subs, subscription{name: name, handler: h})
	L.Push(lua.LNumber(n))
	return 1
}

func (r *Runtime) luaClear(L *lua.LState) int {
	name := L.CheckString(1)
	for sub := range r.subs {
		if sub.name == name {
			delete(r.subs, sub)
		}
	}
	L.Push(lua.LBool(r.bus.ClearAllSubscriptions(name)))
	return 1
}

func (r *Runtime) luaRaise(L *lua.LState) int {
	name := L.CheckString(1)
	if err := r.bus.Raise(name, r.bridge.ToGoValue(L.Get(2))); err != nil {
		L.RaiseError("events.raise %q: %v", name, err)
	}
	return 0
}

func (r *Runtime) luaRaiseSafe(L *lua.LState) int {
	name := L.CheckString(1)
	r.bus.RaiseSafe(name, r.bridge.ToGoValue(L.Get(2)))
	return 0
}

func (r *Runtime) luaHas(L *lua.LState) int {
	L.Push(lua.LBool(r.bus.Has(L.CheckString(1))))
	return 1
}
