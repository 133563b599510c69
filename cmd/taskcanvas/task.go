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

func (c *cli) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(c.taskAddCmd())
	cmd.AddCommand(c.taskListCmd())
	cmd.AddCommand(c.taskUpdateCmd())
	cmd.AddCommand(c.taskDoneCmd())
	cmd.AddCommand(c.taskMoveCmd())
	cmd.AddCommand(c.taskDeleteCmd())
	cmd.AddCommand(c.taskLinkCmd())
	cmd.AddCommand(c.taskUnlinkCmd())
	cmd.AddCommand(c.taskStyleCmd())
	cmd.AddCommand(c.taskAttachCmd())
	return cmd
}

func (c *cli) taskAddCmd() *cobra.Command {
	var projectID, parentID, content, start, end string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
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
			t := model.Task{
				Title:        title,
				Content:      content,
				StartDate:    start,
				EndDate:      end,
				ProjectID:    strings.TrimSpace(projectID),
				ParentTaskID: strings.TrimSpace(parentID),
			}
			if pos != nil {
				t.Position = *pos
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				if t.ProjectID != "" {
					if _, ok := s.Project(t.ProjectID); !ok {
						return fmt.Errorf("project %q: %w", t.ProjectID, planner.ErrNotFound)
					}
				}
				if t.ParentTaskID != "" {
					if _, ok := s.Task(t.ParentTaskID); !ok {
						return fmt.Errorf("task %q: %w", t.ParentTaskID, planner.ErrNotFound)
					}
				}
				t = s.AddTask(t)
				log.Info().Msgf("task %s added", t.ID)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "attach the task directly to a project")
	cmd.Flags().StringVar(&parentID, "parent", "", "make the task a child of another task")
	cmd.Flags().StringVar(&content, "content", "", "task description")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	addPositionFlags(cmd)
	return cmd
}

func (c *cli) taskListCmd() *cobra.Command {
	var projectID, from, to string
	var children string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "List tasks. --project lists a project's whole task tree, --children the direct children of a task, --from/--to the tasks scheduled in a date range.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				var tasks []model.Task
				switch {
				case projectID != "":
					tasks = s.ProjectTasks(projectID)
				case children != "":
					tasks = s.ChildrenOf(children)
				case from != "" || to != "":
					if from == "" {
						from = to
					}
					if to == "" {
						to = from
					}
					start, err := parseDay(from)
					if err != nil {
						return err
					}
					end, err := parseDay(to)
					if err != nil {
						return err
					}
					tasks = s.TasksInRange(start, end)
				default:
					tasks = s.Tasks()
				}
				if len(tasks) == 0 {
					log.Info().Msg("no tasks")
					return nil
				}
				for _, t := range tasks {
					writeTask(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "list the task tree of a project")
	cmd.Flags().StringVar(&children, "children", "", "list direct children of a task")
	cmd.Flags().StringVar(&from, "from", "", "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "range end (YYYY-MM-DD)")
	return cmd
}

func writeTask(w io.Writer, t model.Task) {
	status := "open"
	if t.Completed {
		status = "done"
	}
	link := "-"
	switch {
	case t.ParentTaskID != "":
		link = "parent:" + t.ParentTaskID
	case t.ProjectID != "":
		link = "project:" + t.ProjectID
	}
	dates := "-"
	if t.StartDate != "" || t.EndDate != "" {
		dates = t.StartDate + ".." + t.EndDate
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, status, link, dates, t.Title)
}

func (c *cli) taskUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				patch model.TaskPatch
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
			if patch.Completed, err = boolFlag(cmd, "completed"); err != nil {
				return err
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				current, ok := s.Task(args[0])
				if !ok {
					return fmt.Errorf("task %q: %w", args[0], planner.ErrNotFound)
				}
				if patch.Position, err = positionFlags(cmd, current.Position); err != nil {
					return err
				}
				t, err := s.UpdateTask(args[0], patch)
				if err != nil {
					return err
				}
				writeTask(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("content", "", "new description")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD, empty clears)")
	cmd.Flags().String("end", "", "end date (YYYY-MM-DD, empty clears)")
	cmd.Flags().Bool("completed", false, "mark the task completed or open")
	addPositionFlags(cmd)
	return cmd
}

func (c *cli) taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			done := true
			return c.withStore(cmd, func(s *planner.Store) error {
				if _, err := s.UpdateTask(args[0], model.TaskPatch{Completed: &done}); err != nil {
					return err
				}
				log.Info().Msgf("task %s done", args[0])
				return nil
			})
		},
	}
}

func (c *cli) taskMoveCmd() *cobra.Command {
	var dx, dy float64
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task together with its descendants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.MoveTaskSubtree(args[0], model.Position{X: dx, Y: dy}); err != nil {
					return err
				}
				log.Info().Msgf("task %s moved by (%g,%g)", args[0], dx, dy)
				return nil
			})
		},
	}
	addDeltaFlags(cmd, &dx, &dy)
	return cmd
}

func (c *cli) taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task; its children stay in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.DeleteTask(args[0]); err != nil {
					return err
				}
				log.Info().Msgf("task %s deleted", args[0])
				return nil
			})
		},
	}
}

func (c *cli) taskLinkCmd() *cobra.Command {
	var projectID, parentID string
	cmd := &cobra.Command{
		Use:   "link <id>",
		Short: "Link a task to a project or a parent task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (projectID == "") == (parentID == "") {
				return fmt.Errorf("exactly one of --project or --parent is required")
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				var err error
				if projectID != "" {
					_, err = s.LinkTaskToProject(args[0], projectID)
				} else {
					_, err = s.LinkTaskToTask(args[0], parentID)
				}
				if err != nil {
					return err
				}
				log.Info().Msgf("task %s linked", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project to link to")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent task to link to")
	return cmd
}

func (c *cli) taskUnlinkCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "unlink <id>",
		Short: "Detach a task from its project or parent",
		Long:  "Detach a task. With --project the task's project link is removed; without it the parent link is removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				var err error
				if projectID != "" {
					_, err = s.UnlinkTask(projectID, args[0])
				} else {
					_, err = s.UnlinkTaskFromParent(args[0])
				}
				if err != nil {
					return err
				}
				log.Info().Msgf("task %s unlinked", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project to detach from")
	return cmd
}

func (c *cli) taskStyleCmd() *cobra.Command {
	var color string
	var width float64
	cmd := &cobra.Command{
		Use:   "style <id>",
		Short: "Set the color and width of a task's connector line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				t, err := s.SetTaskLineStyle(args[0], model.LineStyle{Color: color, Width: width})
				if err != nil {
					return err
				}
				writeTask(cmd.OutOrStdout(), t)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "line color")
	cmd.Flags().Float64Var(&width, "width", 0, "line width")
	return cmd
}

func (c *cli) taskAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <id> <file>",
		Short: "Attach a file to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read attachment: %w", err)
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				t, err := s.AttachToTask(cmd.Context(), args[0], filepath.Base(args[1]), data)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.Attachment.URL)
				return nil
			})
		},
	}
}
