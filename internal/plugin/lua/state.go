package lua

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// Default limits for Lua state.
const (
	DefaultExecutionTimeout = 5 * time.Second
	DefaultCallStackSize    = 120
)

// State wraps gopher-lua with sandboxing and execution deadlines.
//
// State is not safe for concurrent use.
type State struct {
	L *lua.LState

	executionTimeout time.Duration
	callStackSize    int
	logger           zerolog.Logger

	// depth counts nested calls; only the outermost one installs a context.
	depth  int
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the deadline applied to each top level call.
// Zero disables the deadline.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.executionTimeout = d
	}
}

// WithCallStackSize sets the maximum Lua call depth.
func WithCallStackSize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.callStackSize = n
		}
	}
}

// WithLogger sets the logger that receives print output.
func WithLogger(l zerolog.Logger) StateOption {
	return func(s *State) {
		s.logger = l
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		callStackSize:    DefaultCallStackSize,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: state.callStackSize,
	})
	state.L = L

	openSafeLibraries(L)
	installSandbox(L, state.logger)

	return state, nil
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// DoFile executes a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua chunk.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error {
		return s.L.DoString(code)
	})
}

// Call calls fn in protected mode, discarding its results.
func (s *State) Call(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) error {
	return s.run(ctx, func() error {
		return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
}

// run executes fn with panic recovery. The outermost call installs ctx,
// bounded by the execution timeout, on the interpreter.
func (s *State) run(ctx context.Context, fn func() error) (err error) {
	if s.closed {
		return ErrStateClosed
	}

	if s.depth == 0 {
		if ctx == nil {
			ctx = context.Background()
		}
		if s.executionTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.executionTimeout)
			defer cancel()
		}
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	s.depth++
	defer func() {
		s.depth--
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err = fn(); err != nil {
		return s.contextError(err)
	}
	return nil
}

func (s *State) contextError(err error) error {
	ctx := s.L.Context()
	if ctx == nil || ctx.Err() == nil {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	return fmt.Errorf("%w: %v", ctx.Err(), err)
}

// GetGlobal returns a global variable.
func (s *State) GetGlobal(name string) lua.LValue {
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.L.SetGlobal(name, value)
}

// Close closes the Lua state. It is safe to call more than once.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// IsClosed reports whether the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}
