package main

import (
	"fmt"
	"strconv"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) priorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "priority",
		Aliases: []string{"prio"},
		Short:   "Manage the global priority list",
	}
	cmd.AddCommand(c.priorityListCmd())
	cmd.AddCommand(c.prioritySetCmd())
	cmd.AddCommand(c.priorityMoveCmd())
	return cmd
}

func (c *cli) priorityListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prioritized tasks in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if all {
					for i, id := range s.Prioritized() {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, id)
					}
					return nil
				}
				tasks := s.VisiblePriorities()
				if len(tasks) == 0 {
					log.Info().Msg("nothing prioritized")
					return nil
				}
				for i, t := range tasks {
					writePriority(cmd, i, t)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print the stored id list, including hidden entries")
	return cmd
}

func (c *cli) prioritySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id>...",
		Short: "Replace the priority list",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				ids := s.SetPrioritizedTasks(args)
				log.Info().Msgf("%d tasks prioritized", len(ids))
				return nil
			})
		},
	}
}

func (c *cli) priorityMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <position>",
		Short: "Move a task to a 1-based position among the visible priorities",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 1 {
				return fmt.Errorf("invalid position %q", args[1])
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				if _, err := s.MovePriority(args[0], pos-1); err != nil {
					return err
				}
				for i, t := range s.VisiblePriorities() {
					writePriority(cmd, i, t)
				}
				return nil
			})
		},
	}
}

func writePriority(cmd *cobra.Command, i int, t model.Task) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", i+1, t.ID, t.Title)
}
