package main

import (
	"fmt"
	"strings"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/planner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) memoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memo",
		Short: "Manage canvas memos",
	}
	cmd.AddCommand(c.memoAddCmd())
	cmd.AddCommand(c.memoListCmd())
	cmd.AddCommand(c.memoUpdateCmd())
	cmd.AddCommand(c.memoDeleteCmd())
	return cmd
}

func (c *cli) memoAddCmd() *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a memo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := positionFlags(cmd, model.Position{})
			if err != nil {
				return err
			}
			m := model.Memo{Content: strings.Join(args, " "), Color: color}
			if pos != nil {
				m.Position = *pos
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				m = s.AddMemo(m)
				log.Info().Msgf("memo %s added", m.ID)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), m.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "memo color")
	addPositionFlags(cmd)
	return cmd
}

func (c *cli) memoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List memos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				memos := s.Memos()
				if len(memos) == 0 {
					log.Info().Msg("no memos")
					return nil
				}
				for _, m := range memos {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(%g,%g)\t%s\n", m.ID, m.Color, m.Position.X, m.Position.Y, m.Content)
				}
				return nil
			})
		},
	}
}

func (c *cli) memoUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				patch model.MemoPatch
				err   error
			)
			if patch.Content, err = stringFlag(cmd, "text"); err != nil {
				return err
			}
			if patch.Color, err = stringFlag(cmd, "color"); err != nil {
				return err
			}
			if patch.Width, err = floatFlag(cmd, "width"); err != nil {
				return err
			}
			if patch.Height, err = floatFlag(cmd, "height"); err != nil {
				return err
			}
			return c.withStore(cmd, func(s *planner.Store) error {
				var current model.Memo
				for _, m := range s.Memos() {
					if m.ID == args[0] {
						current = m
					}
				}
				if patch.Position, err = positionFlags(cmd, current.Position); err != nil {
					return err
				}
				if _, err := s.UpdateMemo(args[0], patch); err != nil {
					return err
				}
				log.Info().Msgf("memo %s updated", args[0])
				return nil
			})
		},
	}
	cmd.Flags().String("text", "", "new memo text")
	cmd.Flags().String("color", "", "new color")
	cmd.Flags().Float64("width", 0, "memo width")
	cmd.Flags().Float64("height", 0, "memo height")
	addPositionFlags(cmd)
	return cmd
}

func (c *cli) memoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a memo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(s *planner.Store) error {
				if err := s.DeleteMemo(args[0]); err != nil {
					return err
				}
				log.Info().Msgf("memo %s deleted", args[0])
				return nil
			})
		},
	}
}
