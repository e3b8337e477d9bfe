package render

import (
	"bytes"

	"folio/internal/domain/content"
	"folio/internal/heading"
	"folio/internal/markdown"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{md: markdown.New()}
}

type MarkdownResult struct {
	HTML    []byte
	Outline content.Outline
}

// Render converts an article body to HTML. heading.Annotate gives every
// heading its id and the nav-bar scroll margin before the tree is written
// out; heading.Extract(src) runs the same parse and returns the same
// outline.
func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))
	outline := heading.Annotate(doc, src)

	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML:    buf.Bytes(),
		Outline: outline,
	}, nil
}
