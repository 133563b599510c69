package main

import (
	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/metalagman/taskcanvas/internal/logging"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	debug      bool
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           "taskcanvas",
		Short:         "taskcanvas plans projects and task trees on a canvas",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(c.debug)
		},
	}
	cmd.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath, "config file path")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(c.initCmd())
	cmd.AddCommand(c.projectCmd())
	cmd.AddCommand(c.taskCmd())
	cmd.AddCommand(c.priorityCmd())
	cmd.AddCommand(c.memoCmd())
	cmd.AddCommand(c.reportCmd())
	cmd.AddCommand(c.serveCmd())
	cmd.AddCommand(c.tuiCmd())
	cmd.AddCommand(c.mcpCmd())
	return cmd
}
