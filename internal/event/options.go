package event

import "github.com/rs/zerolog"

// BusOption configures a Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the event bus.
type busConfig struct {
	// logger receives channel lifecycle and suppressed failures.
	logger zerolog.Logger
}

// defaultBusConfig returns the default configuration: logging disabled.
func defaultBusConfig() busConfig {
	return busConfig{
		logger: zerolog.Nop(),
	}
}

// WithLogger sets the logger used for channel lifecycle and for failures
// suppressed by RaiseSafe.
func WithLogger(l zerolog.Logger) BusOption {
	return func(c *busConfig) {
		c.logger = l
	}
}
