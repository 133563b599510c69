package main

import (
	"github.com/metalagman/taskcanvas/internal/mcpserver"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve planner tools to an assistant over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				log.Info().Msg("serving MCP tools on stdio")
				return mcpserver.Serve(cmd.Context(), mcpserver.New(s, version))
			})
		},
	}
}
