package output

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown writes a markdown document, rendered for the terminal in
// terminal format and verbatim otherwise. Rendering failures fall back to
// the raw document.
func (r *Renderer) RenderMarkdown(doc string) error {
	if r.format != FormatTerminal {
		return r.write(doc)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return r.write(doc)
	}
	rendered, err := renderer.Render(doc)
	if err != nil {
		return r.write(doc)
	}
	return r.write(rendered)
}
