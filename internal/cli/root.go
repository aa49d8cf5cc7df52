// Package cli implements the observe command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "observe",
		Short:         "Run Lua scripts against an in-process event bus",
		Long:          "observe runs Lua scripts that subscribe to and raise named events, optionally reloading them when they change.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
