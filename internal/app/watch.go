package app

import (
	"context"
	"slices"

	"github.com/dshills/observable/internal/watch"
)

// watchLoop raises file.changed for every debounced change and reloads the
// affected script or configuration.
func (app *Application) watchLoop(ctx context.Context) error {
	w, err := watch.New(
		watch.WithDebounce(app.config.Watch.Debounce.Std()),
		watch.WithLogger(app.logger),
	)
	if err != nil {
		return &InitError{Component: "watch", Err: err}
	}
	defer w.Close()

	for _, path := range app.scripts {
		if err := w.Add(path); err != nil {
			return &InitError{Component: "watch", Err: err}
		}
	}
	if app.configPath != "" {
		if err := w.Add(app.configPath); err != nil {
			return &InitError{Component: "watch", Err: err}
		}
	}

	app.logger.Info().Strs("paths", w.Paths()).Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-w.Events():
			if !ok {
				return nil
			}
			app.bus.RaiseSafe(watch.EventFileChanged, change)
			app.handleChange(ctx, change.Path)
		}
	}
}

func (app *Application) handleChange(ctx context.Context, path string) {
	switch {
	case path == app.configPath:
		if err := app.reloadConfig(); err != nil {
			app.logger.Error().Err(err).Str("path", path).Msg("config reload failed")
		}

	case slices.Contains(app.scripts, path):
		if err := app.Reload(ctx, path); err != nil {
			app.logger.Error().Err(err).Str("script", path).Msg("script reload failed")
		}
	}
}

// reloadConfig re-reads the configuration file. Only the traced events are
// applied to the running application.
func (app *Application) reloadConfig() error {
	cfg, err := loadConfig(app.opts)
	if err != nil {
		return err
	}
	if err := app.trace.set(cfg.Trace.Events); err != nil {
		return err
	}
	app.config.Trace = cfg.Trace
	app.bus.RaiseSafe(EventConfigReloaded, map[string]any{"path": app.configPath})
	return nil
}
