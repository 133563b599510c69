package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/metalagman/taskcanvas/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) reportCmd() *cobra.Command {
	var (
		period     string
		date       string
		language   string
		promptOnly bool
		raw        bool
		style      string
		width      int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a progress report for a day, week or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := report.ParsePeriod(period)
			if err != nil {
				return err
			}
			anchor := time.Now()
			if strings.TrimSpace(date) != "" {
				if anchor, err = parseDay(date); err != nil {
					return err
				}
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			cfg := a.cfg
			prompt := report.Build(report.Input{
				Projects: a.store.Projects(),
				Tasks:    a.store.Tasks(),
				Period:   p,
				Anchor:   anchor,
				Language: language,
			})
			a.Close()

			if promptOnly {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), prompt.Instructions)
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), prompt.Input)
				return nil
			}

			gen, err := report.NewGenerator(cmd.Context(), cfg.Report, nil)
			if err != nil {
				return err
			}
			log.Info().Str("provider", cfg.Report.Provider).Str("model", cfg.Report.Model).Msg("generating report")
			text, err := gen.Generate(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			if !raw {
				rendered, err := report.Render(text, style, width)
				if err != nil {
					log.Warn().Err(err).Msg("render report, printing raw markdown")
				} else {
					text = rendered
				}
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", string(report.Week), "report period (day|week|month)")
	cmd.Flags().StringVar(&date, "date", "", "any day inside the period (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&language, "language", "English", "report language")
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "print the prompt instead of calling the model")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown without terminal styling")
	cmd.Flags().StringVar(&style, "style", "dark", "terminal style (dark|light|notty|ascii)")
	cmd.Flags().IntVar(&width, "width", 100, "wrap width for styled output")
	return cmd
}
