package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const minRenderWidth = 20

// Render formats report markdown for a terminal using a glamour standard
// style ("dark", "light", "notty", "ascii"). An empty style means dark.
func Render(md, style string, width int) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	if width < minRenderWidth {
		width = minRenderWidth
	}
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = styles.DarkStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
