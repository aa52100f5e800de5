package render

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWrapWidth = 100

// Markdown renders markdown for the terminal. When stdout is not a
// terminal (piped output, CI) the raw markdown is returned unchanged so
// results stay grep-able.
func Markdown(md string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}

	width := defaultWrapWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
		width = w
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
