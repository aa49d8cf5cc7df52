package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dshills/observable/internal/config"
	"github.com/dshills/observable/internal/event/dispatch"
)

func noEnv(string) (string, bool) { return "", false }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNew_RequiresScripts(t *testing.T) {
	_, err := New(Options{Output: io.Discard, Lookup: noEnv})

	var initErr *InitError
	if !errors.As(err, &initErr) || initErr.Component != "scripts" {
		t.Fatalf("New() error = %v, want scripts InitError", err)
	}
	if !errors.Is(err, ErrNoScripts) {
		t.Errorf("error should wrap ErrNoScripts: %v", err)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.toml", "[log]\nlevel = \"loud\"\n")

	_, err := New(Options{ConfigPath: bad, Scripts: []string{"x.lua"}, Output: io.Discard, Lookup: noEnv})
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("New() error = %v, want ErrValidationFailed", err)
	}

	env := func(key string) (string, bool) {
		if key == config.EnvPrefix+"WATCH" {
			return "maybe", true
		}
		return "", false
	}
	_, err = New(Options{Scripts: []string{"x.lua"}, Output: io.Discard, Lookup: env})
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("New() with bad env error = %v, want ErrValidationFailed", err)
	}
}

func TestNew_MergesScripts(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "observe.yaml", "scripts:\n  paths: [b.lua, a.lua]\n")

	app, err := New(Options{
		ConfigPath: cfgPath,
		Scripts:    []string{"a.lua"},
		LogLevel:   "debug",
		Output:     io.Discard,
		Lookup:     noEnv,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	a, _ := filepath.Abs("a.lua")
	b, _ := filepath.Abs("b.lua")
	if got := app.Scripts(); !reflect.DeepEqual(got, []string{a, b}) {
		t.Errorf("Scripts() = %v, want [%s %s]", got, a, b)
	}
	if app.Config().Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", app.Config().Log.Level)
	}
}

func TestRun_ExecutesScripts(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "main.lua", `
		local d = dict.new("items")
		events.on("app.started", function(info)
			d:add("started", info.scripts)
		end)
		events.raise("script.ready", { name = "main" })
	`)
	cfgPath := writeFile(t, dir, "observe.toml", `
[log]
format = "json"

[trace]
events = ["script.ready", "dict.items.changed"]
`)

	var logs bytes.Buffer
	app, err := New(Options{ConfigPath: cfgPath, Scripts: []string{script}, Output: &logs, Lookup: noEnv})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var ready any
	_ = app.Bus().On("script.ready", dispatch.NewObserver(func(d any) { ready = d }))

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(ready, map[string]any{"name": "main"}) {
		t.Errorf("ready = %#v", ready)
	}

	out := logs.String()
	for _, want := range []string{
		`"event":"script.ready"`,
		`"event":"dict.items.changed"`,
		`"message":"script loaded"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %s:\n%s", want, out)
		}
	}

	// Script subscriptions are removed when Run returns.
	if s, ok := app.Bus().Stats(EventStarted); ok && s.Subscriptions != 0 {
		t.Errorf("app.started subscriptions = %d, want 0", s.Subscriptions)
	}
}

func TestRun_ScriptError(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "broken.lua", `error("nope")`)

	app, err := New(Options{Scripts: []string{script}, Output: io.Discard, Lookup: noEnv})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = app.Run(context.Background())
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("Run() error = %v, want ScriptError", err)
	}
	if scriptErr.Path != script {
		t.Errorf("Path = %q, want %q", scriptErr.Path, script)
	}
}

func TestRun_ReloadsChangedScript(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "main.lua", `events.raise("loaded", 1)`)
	cfgPath := writeFile(t, dir, "observe.toml", "[watch]\ndebounce = \"20ms\"\n")

	app, err := New(Options{
		ConfigPath: cfgPath,
		Scripts:    []string{script},
		Watch:      true,
		Output:     io.Discard,
		Lookup:     noEnv,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	loaded := make(chan any, 4)
	changed := make(chan any, 4)
	_ = app.Bus().On("loaded", dispatch.NewObserver(func(d any) { loaded <- d }))
	_ = app.Bus().On("file.changed", dispatch.NewObserver(func(d any) { changed <- d }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	waitFor := func(ch <-chan any, what string) any {
		t.Helper()
		select {
		case v := <-ch:
			return v
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
			return nil
		}
	}

	if got := waitFor(loaded, "first load"); got != int64(1) {
		t.Errorf("first load = %v, want 1", got)
	}

	// Give the watcher time to register before changing the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "main.lua", `events.raise("loaded", 2)`)

	waitFor(changed, "file.changed")
	if got := waitFor(loaded, "reload"); got != int64(2) {
		t.Errorf("reload = %v, want 2", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ServesMetrics(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "main.lua", `events.on("tick", function() end)`)

	app, err := New(Options{
		Scripts:     []string{script},
		Watch:       true,
		MetricsAddr: "127.0.0.1:0",
		Output:      io.Discard,
		Lookup:      noEnv,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	started := make(chan struct{}, 1)
	_ = app.Bus().On(EventStarted, dispatch.NewObserver(func(any) { started <- struct{}{} }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for start")
	}

	resp, err := http.Get("http://" + app.MetricsAddr() + "/metrics")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`observe_event_subscriptions{event="tick"} 1`,
		`observe_event_raised_total{event="app.started"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestTracer_Set(t *testing.T) {
	app, err := New(Options{Scripts: []string{"x.lua"}, Output: io.Discard, Lookup: noEnv})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tr := app.trace
	if err := tr.set([]string{"b", "a"}); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if got := tr.traced(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("traced() = %v", got)
	}

	if err := tr.set([]string{"b", "c"}); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if got := tr.traced(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("traced() = %v", got)
	}
	if s, _ := app.Bus().Stats("a"); s.Subscriptions != 0 {
		t.Errorf("a still has %d subscriptions", s.Subscriptions)
	}
	if s, _ := app.Bus().Stats("b"); s.Subscriptions != 1 {
		t.Errorf("b has %d subscriptions, want 1", s.Subscriptions)
	}
}

func TestTracer_SetAfterChannelCleared(t *testing.T) {
	app, err := New(Options{Scripts: []string{"x.lua"}, Output: io.Discard, Lookup: noEnv})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tr := app.trace
	if err := tr.set([]string{"a"}); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	app.Bus().ClearAllSubscriptions("a")

	if err := tr.set([]string{"a"}); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if s, _ := app.Bus().Stats("a"); s.Subscriptions != 1 {
		t.Errorf("a has %d subscriptions after set, want 1", s.Subscriptions)
	}

	if err := tr.set([]string{"a"}); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if s, _ := app.Bus().Stats("a"); s.Subscriptions != 1 {
		t.Errorf("a has %d subscriptions after repeated set, want 1", s.Subscriptions)
	}
}
