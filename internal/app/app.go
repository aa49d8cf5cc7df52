// Package app wires configuration, logging, the event bus and Lua scripts
// together and runs them until the scripts finish or, when watching, until
// the context is canceled.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/observable/internal/config"
	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/logging"
	"github.com/dshills/observable/internal/plugin/lua"
)

// Lifecycle events raised on the bus.
const (
	EventStarted        = "app.started"
	EventStopping       = "app.stopping"
	EventScriptReloaded = "script.reloaded"
	EventConfigReloaded = "config.reloaded"
)

// Options configures the application. Non-zero fields override the config
// file and environment.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// Scripts are run before those listed in the config file.
	Scripts []string

	// Watch re-runs scripts when they change.
	Watch bool

	// MetricsAddr enables the Prometheus endpoint.
	MetricsAddr string

	// LogLevel overrides log.level.
	LogLevel string

	// Output receives log output. Defaults to os.Stderr.
	Output io.Writer

	// Lookup reads environment overrides. Defaults to os.LookupEnv.
	Lookup config.LookupFunc
}

// Application owns the bus and one Lua runtime per script.
//
// Scripts, the watch loop and every bus raise that can reach a script
// handler run on the goroutine that called Run.
type Application struct {
	opts   Options
	config config.Config
	logger zerolog.Logger
	bus    *event.Bus
	trace  *tracer

	scripts    []string
	configPath string
	runtimes   map[string]*lua.Runtime

	mu      sync.Mutex
	metrics *metricsServer

	running atomic.Bool
}

// New loads configuration and prepares the bus. Scripts are not run until
// Run is called.
func New(opts Options) (*Application, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger, err := logging.New(out, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, &InitError{Component: "logging", Err: err}
	}

	app := &Application{
		opts:     opts,
		config:   cfg,
		logger:   logger,
		bus:      event.NewBus(event.WithLogger(logger)),
		runtimes: make(map[string]*lua.Runtime),
	}

	if opts.ConfigPath != "" {
		if app.configPath, err = filepath.Abs(opts.ConfigPath); err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
	}

	app.scripts, err = scriptPaths(append(append([]string(nil), opts.Scripts...), cfg.Scripts.Paths...))
	if err != nil {
		return nil, &InitError{Component: "scripts", Err: err}
	}
	if len(app.scripts) == 0 {
		return nil, &InitError{Component: "scripts", Err: ErrNoScripts}
	}

	app.trace = newTracer(app.bus, logger)
	if err := app.trace.set(cfg.Trace.Events); err != nil {
		return nil, &InitError{Component: "trace", Err: err}
	}

	return app, nil
}

func loadConfig(opts Options) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Watch {
		cfg.Watch.Enabled = true
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}

	return cfg, cfg.Validate()
}

// scriptPaths makes paths absolute and drops duplicates, keeping order.
func scriptPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out, nil
}

// Bus returns the application's event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Config returns the effective configuration.
func (app *Application) Config() config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() zerolog.Logger {
	return app.logger
}

// Scripts returns the absolute paths of the scripts Run executes.
func (app *Application) Scripts() []string {
	return append([]string(nil), app.scripts...)
}

// MetricsAddr returns the metrics listen address while Run is serving it.
func (app *Application) MetricsAddr() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.metrics == nil {
		return ""
	}
	return app.metrics.addr()
}

// Run starts the metrics endpoint, runs every script, raises EventStarted
// and, when watching, reloads scripts on change until ctx is canceled.
// Runtimes are closed before Run returns.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer app.closeRuntimes()

	if app.config.Metrics.Addr != "" {
		srv, err := startMetrics(app.config.Metrics, app.bus, app.logger)
		if err != nil {
			return &InitError{Component: "metrics", Err: err}
		}
		app.mu.Lock()
		app.metrics = srv
		app.mu.Unlock()
		defer func() {
			app.mu.Lock()
			app.metrics = nil
			app.mu.Unlock()
			srv.shutdown()
		}()
	}

	for _, path := range app.scripts {
		if err := app.load(ctx, path); err != nil {
			return err
		}
	}

	app.bus.RaiseSafe(EventStarted, map[string]any{"scripts": len(app.scripts)})
	defer app.bus.RaiseSafe(EventStopping, nil)

	if !app.config.Watch.Enabled {
		return nil
	}
	return app.watchLoop(ctx)
}

// Reload closes the runtime for path and runs the script again in a fresh
// one.
func (app *Application) Reload(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if rt, ok := app.runtimes[abs]; ok {
		rt.Close()
		delete(app.runtimes, abs)
	}
	if err := app.load(ctx, abs); err != nil {
		return err
	}
	app.bus.RaiseSafe(EventScriptReloaded, map[string]any{"path": abs})
	return nil
}

// load runs path in a new runtime and keeps the runtime on success.
func (app *Application) load(ctx context.Context, path string) error {
	rt, err := lua.NewRuntime(app.bus,
		lua.WithName(path),
		lua.WithRuntimeLogger(app.logger),
		lua.WithStateOptions(lua.WithExecutionTimeout(app.config.Scripts.Timeout.Std())),
	)
	if err != nil {
		return &ScriptError{Path: path, Err: err}
	}

	if err := rt.DoFile(ctx, path); err != nil {
		rt.Close()
		return &ScriptError{Path: path, Err: err}
	}

	app.runtimes[path] = rt
	app.logger.Info().
		Str("script", path).
		Str("runtime", rt.ID()).
		Int("subscriptions", rt.Subscriptions()).
		Msg("script loaded")
	return nil
}

func (app *Application) closeRuntimes() {
	for path, rt := range app.runtimes {
		rt.Close()
		delete(app.runtimes, path)
	}
}
