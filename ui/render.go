package ui

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts a markdown explanation into HTML. Raw HTML in
// the input is skipped since explanations come from the model.
func renderMarkdown(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(src))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.Render(doc, renderer))
}
