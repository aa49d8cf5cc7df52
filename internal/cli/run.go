package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/observable/internal/app"
)

func newRunCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "run [script.lua...]",
		Short: "Run scripts",
		Long: `Run each script in its own Lua runtime on a shared event bus.

Without --watch the command exits once every script has run. With --watch it
re-runs a script whenever the file changes and stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Scripts = args
			opts.Output = cmd.ErrOrStderr()

			application, err := app.New(opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(runContext(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return application.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a TOML or YAML configuration file")
	flags.BoolVarP(&opts.Watch, "watch", "w", false, "re-run scripts when they change")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")

	return cmd
}

// runContext returns ctx, or a background context when ctx is nil.
func runContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
