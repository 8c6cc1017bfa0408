package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minHelpWrap keeps glamour output readable on very narrow terminals.
const minHelpWrap = 24

// helpRenderer styles the help overlay's markdown through glamour. Building a
// term renderer is not free, so the last one is kept until the overlay width
// changes. Any glamour failure falls back to the raw markdown.
type helpRenderer struct {
	wrap     int
	renderer *glamour.TermRenderer
}

func (h *helpRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	if width < minHelpWrap {
		width = minHelpWrap
	}

	if h.renderer == nil || h.wrap != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown
		}
		h.renderer = renderer
		h.wrap = width
	}

	out, err := h.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
