package main

import (
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/metalagman/taskcanvas/internal/tui"
	"github.com/spf13/cobra"
)

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse and reorder priorities in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				return tui.Run(s)
			})
		},
	}
}
