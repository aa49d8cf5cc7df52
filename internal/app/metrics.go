package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/observable/internal/config"
	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/metrics"
)

const metricsShutdownTimeout = 5 * time.Second

type metricsServer struct {
	srv    *http.Server
	ln     net.Listener
	logger zerolog.Logger
}

// startMetrics serves bus statistics at /metrics on cfg.Addr.
func startMetrics(cfg config.MetricsConfig, bus *event.Bus, logger zerolog.Logger) (*metricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(metrics.NewRegistry(cfg.Namespace, bus)))

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	m := &metricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln:     ln,
		logger: logger,
	}

	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	logger.Info().Str("addr", m.addr()).Msg("serving metrics")
	return m, nil
}

func (m *metricsServer) addr() string {
	return m.ln.Addr().String()
}

func (m *metricsServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("metrics shutdown")
	}
}
