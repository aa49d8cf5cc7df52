package lua

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	glua "github.com/yuin/gopher-lua"
)

func TestStateDoString(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer state.Close()

	if err := state.DoString(context.Background(), `x = 1 + 1`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	num, ok := state.GetGlobal("x").(glua.LNumber)
	if !ok || float64(num) != 2 {
		t.Errorf("x = %v, want 2", state.GetGlobal("x"))
	}
}

func TestStateDoStringSyntaxError(t *testing.T) {
	state, _ := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), `invalid lua code !!!`); err == nil {
		t.Error("DoString() should fail on syntax error")
	}
}

func TestStateSandbox(t *testing.T) {
	state, _ := NewState()
	defer state.Close()

	code := `ok = dofile == nil and loadfile == nil and load == nil and loadstring == nil
		and require == nil and io == nil and os == nil and debug == nil
		and string ~= nil and table ~= nil and math ~= nil`
	if err := state.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if state.GetGlobal("ok") != glua.LTrue {
		t.Error("unsafe globals should be removed and safe libraries kept")
	}
}

func TestStateExecutionTimeout(t *testing.T) {
	state, _ := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer state.Close()

	start := time.Now()
	err := state.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString() error = %v, want ErrExecutionTimeout", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout was not enforced promptly")
	}

	// The state stays usable after a timeout.
	if err := state.DoString(context.Background(), `y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateCanceledContext(t *testing.T) {
	state, _ := NewState(WithExecutionTimeout(0))
	defer state.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := state.DoString(ctx, `while true do end`)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("DoString() error = %v, want context.Canceled", err)
	}
}

func TestStatePrintLogs(t *testing.T) {
	var buf bytes.Buffer
	state, _ := NewState(WithLogger(zerolog.New(&buf)))
	defer state.Close()

	if err := state.DoString(context.Background(), `print("hello", 42)`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `hello\t42`) {
		t.Errorf("print output not logged: %s", out)
	}
	if !strings.Contains(out, `"source":"lua"`) {
		t.Errorf("missing source field: %s", out)
	}
}

func TestStateCall(t *testing.T) {
	state, _ := NewState()
	defer state.Close()

	if err := state.DoString(context.Background(), `function double(n) result = n * 2 end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	fn, ok := state.GetGlobal("double").(*glua.LFunction)
	if !ok {
		t.Fatal("double is not a function")
	}
	if err := state.Call(context.Background(), fn, glua.LNumber(21)); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if state.GetGlobal("result") != glua.LNumber(42) {
		t.Errorf("result = %v, want 42", state.GetGlobal("result"))
	}
}

func TestStateClose(t *testing.T) {
	state, _ := NewState()
	state.Close()
	state.Close()

	if !state.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := state.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() on closed state error = %v, want ErrStateClosed", err)
	}
}

func TestStateCallStackSize(t *testing.T) {
	state, _ := NewState(WithCallStackSize(16))
	defer state.Close()

	err := state.DoString(context.Background(), `local function f(n) return 1 + f(n + 1) end f(1)`)
	if err == nil {
		t.Error("unbounded recursion should fail with a small call stack")
	}
}
