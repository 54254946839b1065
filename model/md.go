package model

import (
	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/glamour"
)

const minRenderWidth = 40

// renderStory renders a story body for the view screen. glamour is tried
// first; go-term-markdown covers the case where no renderer can be built
// or the body trips it up.
func renderStory(md string, width int, style string) string {
	wrap := max(width, minRenderWidth) - 4

	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	if r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrap)); err == nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return string(markdown.Render(md, wrap, 4))
}
