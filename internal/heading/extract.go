package heading

import (
	"folio/internal/domain/content"
	"folio/internal/markdown"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

var mdParser = markdown.New().Parser()

// Extract parses body the way the page renderer does and returns its
// outline. Headings with no text are given an id but left out.
func Extract(body []byte) content.Outline {
	doc := mdParser.Parse(text.NewReader(body), parser.WithContext(parser.NewContext()))
	return Annotate(doc, body)
}

// Annotate walks doc in document order, sets id and the scroll margin style
// on every heading and returns the outline. src is the source doc was
// parsed from; fallback ids are seeded from it.
func Annotate(doc ast.Node, src []byte) content.Outline {
	ids := NewDocumentIDs(src)
	var out content.Outline
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		label := DisplayText(TextContent(FromAST(h, src)))
		id := ids.Assign(label)
		h.SetAttributeString("id", []byte(id))
		h.SetAttributeString("style", []byte(ScrollMarginStyle))
		if label != "" {
			out = append(out, content.Heading{ID: id, Text: label, Level: h.Level})
		}
		return ast.WalkSkipChildren, nil
	})
	return out
}

// FromHTMLDocument returns the outline of rendered HTML, reading ids the
// renderer already assigned. Headings without an id or text are skipped.
func FromHTMLDocument(doc *html.Node) content.Outline {
	var out content.Outline
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				id := attr(n, "id")
				text := DisplayText(TextContent(FromHTML(n)))
				if id != "" && text != "" {
					out = append(out, content.Heading{ID: id, Text: text, Level: level})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
