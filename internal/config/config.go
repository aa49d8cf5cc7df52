package config

import (
	"strconv"
	"time"

	"github.com/dshills/observable/internal/logging"
)

// Config holds all settings for the observe command.
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log"`
	Scripts ScriptsConfig `toml:"scripts" yaml:"scripts"`
	Watch   WatchConfig   `toml:"watch" yaml:"watch"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
	Trace   TraceConfig   `toml:"trace" yaml:"trace"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error, off.
	Level string `toml:"level" yaml:"level"`
	// Format is "json" or "console".
	Format string `toml:"format" yaml:"format"`
}

// ScriptsConfig configures Lua scripts.
type ScriptsConfig struct {
	// Paths lists scripts run at startup, after those given on the command line.
	Paths []string `toml:"paths" yaml:"paths"`
	// Timeout bounds each top-level script execution. Zero disables it.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// WatchConfig configures script reloading.
type WatchConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr      string `toml:"addr" yaml:"addr"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// TraceConfig lists event names logged whenever they are raised.
type TraceConfig struct {
	Events []string `toml:"events" yaml:"events"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Scripts: ScriptsConfig{
			Timeout: Duration(5 * time.Second),
		},
		Watch: WatchConfig{
			Debounce: Duration(100 * time.Millisecond),
		},
		Metrics: MetricsConfig{
			Namespace: "observe",
		},
	}
}

// Validate checks every setting and returns the first problem found.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Setting: "log.level", Message: err.Error()}
	}
	if !logging.ValidFormat(c.Log.Format) {
		return &ValidationError{Setting: "log.format", Message: "must be json or console"}
	}
	if c.Scripts.Timeout < 0 {
		return &ValidationError{Setting: "scripts.timeout", Message: "must not be negative"}
	}
	if c.Watch.Debounce < 0 {
		return &ValidationError{Setting: "watch.debounce", Message: "must not be negative"}
	}
	if c.Metrics.Addr != "" && c.Metrics.Namespace == "" {
		return &ValidationError{Setting: "metrics.namespace", Message: "required when metrics.addr is set"}
	}
	for i, name := range c.Trace.Events {
		if name == "" {
			return &ValidationError{Setting: "trace.events", Message: "entry " + strconv.Itoa(i) + " is empty"}
		}
	}
	return nil
}
