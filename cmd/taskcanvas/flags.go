package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/spf13/cobra"
)

// stringFlag returns a pointer to the flag value when the user set it.
func stringFlag(cmd *cobra.Command, name string) (*string, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// dateFlag is stringFlag for YYYY-MM-DD values. An empty value clears the date.
func dateFlag(cmd *cobra.Command, name string) (*string, error) {
	v, err := stringFlag(cmd, name)
	if err != nil || v == nil {
		return v, err
	}
	trimmed := strings.TrimSpace(*v)
	if err := checkDate(trimmed); err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &trimmed, nil
}

func checkDate(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, v); err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return nil
}

func boolFlag(cmd *cobra.Command, name string) (*bool, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func floatFlag(cmd *cobra.Command, name string) (*float64, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// positionFlags reads --x/--y into a position, keeping current values for
// whichever flag was not given. It returns nil when neither was set.
func positionFlags(cmd *cobra.Command, current model.Position) (*model.Position, error) {
	x, err := floatFlag(cmd, "x")
	if err != nil {
		return nil, err
	}
	y, err := floatFlag(cmd, "y")
	if err != nil {
		return nil, err
	}
	if x == nil && y == nil {
		return nil, nil
	}
	p := current
	if x != nil {
		p.X = *x
	}
	if y != nil {
		p.Y = *y
	}
	return &p, nil
}

func addPositionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("x", 0, "canvas x coordinate")
	cmd.Flags().Float64("y", 0, "canvas y coordinate")
}

func addDeltaFlags(cmd *cobra.Command, dx, dy *float64) {
	cmd.Flags().Float64Var(dx, "dx", 0, "horizontal offset")
	cmd.Flags().Float64Var(dy, "dy", 0, "vertical offset")
}

func parseDay(v string) (time.Time, error) {
	t, err := model.ParseDate(strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}
