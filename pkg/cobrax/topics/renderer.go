package topics

import "github.com/charmbracelet/glamour"

// Renderer formats topic markdown for the terminal.
type Renderer interface {
	Render(content string) string
}

// PlainRenderer passes content through untouched, for pipes and dumb
// terminals.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string) string {
	return content
}

// GlamourRenderer renders markdown with terminal styling. Width zero
// means auto-detect.
type GlamourRenderer struct {
	Width int
}

func (r *GlamourRenderer) Render(content string) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
