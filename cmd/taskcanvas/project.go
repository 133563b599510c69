package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(c.projectAddCmd())
	cmd.AddCommand(c.projectListCmd())
	cmd.AddCommand(c.projectUpdateCmd())
	cmd.AddCommand(c.projectMoveCmd())
	cmd.AddCommand(c.projectFinishCmd())
	cmd.AddCommand(c.projectReactivateCmd())
	cmd.AddCommand(c.projectDeleteCmd())
	cmd.AddCommand(c.projectArrangeCmd())
	cmd.AddCommand(c.projectAttachCmd())
	return cmd
}

func (c *cli) projectAddCmd() *cobra.Command {
	var content, start, end string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title is required")
			}
			if err := checkDate(start); err != nil {
				return err
			}
			if err := checkDate(end); err != nil {
				return err
			}
			pos, err := positionFlags(cmd, model.Position{})
			if err != nil {
				return err
			}
			p := model.Project{Title: title, Content: content, StartDate: start, EndDate: end}
			if pos != nil {
				p.Position = *pos
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				p = s.AddProject(p)
				log.Info().Msgf("project %s added", p.ID)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "project description")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	addPositionFlags(cmd)
	return cmd
}

func (c *cli) projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				projects := s.Projects()
				if len(projects) == 0 {
					log.Info().Msg("no projects")
					return nil
				}
				for _, p := range projects {
					writeProject(cmd.OutOrStdout(), p, len(s.ProjectTasks(p.ID)))
				}
				return nil
			})
		},
	}
}

func writeProject(w io.Writer, p model.Project, tasks int) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d tasks\t(%g,%g)\n", p.ID, p.Status, p.Title, tasks, p.Position.X, p.Position.Y)
}

func (c *cli) projectUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				patch model.ProjectPatch
				err   error
			)
			if patch.Title, err = stringFlag(cmd, "title"); err != nil {
				return err
			}
			if patch.Content, err = stringFlag(cmd, "content"); err != nil {
				return err
			}
			if patch.StartDate, err = dateFlag(cmd, "start"); err != nil {
				return err
			}
			if patch.EndDate, err = dateFlag(cmd, "end"); err != nil {
				return err
			}
			if patch.IsCollapsed, err = boolFlag(cmd, "collapsed"); err != nil {
				return err
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				current, ok := s.Project(args[0])
				if !ok {
					return fmt.Errorf("project %q: %w", args[0], planner.ErrNotFound)
				}
				if patch.Position, err = positionFlags(cmd, current.Position); err != nil {
					return err
				}
				p, err := s.UpdateProject(args[0], patch)
				if err != nil {
					return err
				}
				writeProject(cmd.OutOrStdout(), p, len(s.ProjectTasks(p.ID)))
				return nil
			})
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("content", "", "new description")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD, empty clears)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD, empty clears)")
	cmd.Flags().Bool("collapsed", false, "collapse the project on the canvas")
	addPositionFlags(cmd)
	return cmd
}

func (c *cli) projectMoveCmd() *cobra.Command {
	var dx, dy float64
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a project together with all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.MoveProjectGroup(args[0], model.Position{X: dx, Y: dy}); err != nil {
					return err
				}
				log.Info().Msgf("project %s moved by (%g,%g)", args[0], dx, dy)
				return nil
			})
		},
	}
	addDeltaFlags(cmd, &dx, &dy)
	return cmd
}

func (c *cli) projectFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finish <id>",
		Short: "Complete a project and collapse it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.FinishProject(args[0]); err != nil {
					return err
				}
				log.Info().Msgf("project %s finished", args[0])
				return nil
			})
		},
	}
}

func (c *cli) projectReactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reactivate <id>",
		Short: "Reopen a completed project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.ReactivateProject(args[0]); err != nil {
					return err
				}
				log.Info().Msgf("project %s reactivated", args[0])
				return nil
			})
		},
	}
}

func (c *cli) projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and every task under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.DeleteProject(args[0]); err != nil {
					return err
				}
				log.Info().Msgf("project %s deleted", args[0])
				return nil
			})
		},
	}
}

func (c *cli) projectArrangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arrange <id>",
		Short: "Lay out the project's task trees on a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				n, err := s.AutoArrangeProjectTasks(args[0])
				if err != nil {
					return err
				}
				log.Info().Msgf("project %s: %d tasks arranged", args[0], n)
				return nil
			})
		},
	}
}

func (c *cli) projectAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <file>",
		Short: "Attach a file to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read attachment: %w", err)
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				p, err := s.AttachToProject(cmd.Context(), args[0], filepath.Base(args[1]), data)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), p.Attachment.URL)
				return nil
			})
		},
	}
}
