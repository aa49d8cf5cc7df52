package config

import (
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "OBSERVE_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from environment variables:
//
//	OBSERVE_LOG_LEVEL, OBSERVE_LOG_FORMAT, OBSERVE_SCRIPTS_TIMEOUT,
//	OBSERVE_WATCH, OBSERVE_WATCH_DEBOUNCE, OBSERVE_METRICS_ADDR,
//	OBSERVE_TRACE (comma-separated event names)
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup(EnvPrefix + "SCRIPTS_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ValidationError{Setting: "scripts.timeout", Message: err.Error()}
		}
		cfg.Scripts.Timeout = Duration(d)
	}
	if v, ok := lookup(EnvPrefix + "WATCH"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Setting: "watch.enabled", Message: err.Error()}
		}
		cfg.Watch.Enabled = b
	}
	if v, ok := lookup(EnvPrefix + "WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ValidationError{Setting: "watch.debounce", Message: err.Error()}
		}
		cfg.Watch.Debounce = Duration(d)
	}
	if v, ok := lookup(EnvPrefix + "METRICS_ADDR"); ok {
		cfg.Metrics.Addr = v
	}
	if v, ok := lookup(EnvPrefix + "TRACE"); ok {
		cfg.Trace.Events = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
