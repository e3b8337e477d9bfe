package toc

import (
	"bytes"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"folio/internal/domain/content"
	"folio/internal/heading"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Layout constants for the estimated page, in pixels.
const (
	lineHeight    = 28
	codeLine      = 22
	blockGap      = 16
	charsPerLine  = 42
	imageHeight   = 300
	pageTopOffset = 240 // nav bar plus post header
)

var headingHeight = map[atom.Atom]float64{
	atom.H1: 48, atom.H2: 40, atom.H3: 34, atom.H4: 30, atom.H5: 28, atom.H6: 28,
}

// Page is a Document built from rendered article HTML with an estimated
// block layout: one column, fixed line heights, text wrapped at a fixed
// character count.
type Page struct {
	boxes   map[string]Box
	order   []string
	height  float64
	outline content.Outline
}

func NewPage(r io.Reader) (*Page, error) {
	nodes, err := html.ParseFragment(r, &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return nil, err
	}
	p := &Page{boxes: make(map[string]Box)}
	y := float64(pageTopOffset)
	for _, n := range nodes {
		y = p.layout(n, y)
		p.outline = append(p.outline, heading.FromHTMLDocument(n)...)
	}
	p.height = y + blockGap
	return p, nil
}

func PageFromHTML(b []byte) (*Page, error) {
	return NewPage(bytes.NewReader(b))
}

func (p *Page) Lookup(id string) (Box, bool) {
	b, ok := p.boxes[id]
	return b, ok
}

func (p *Page) Height() float64 { return p.height }

// Outline lists the headings that carry an id, read from the HTML itself.
func (p *Page) Outline() content.Outline { return p.outline }

// IDs lists laid out ids in document order.
func (p *Page) IDs() []string { return append([]string(nil), p.order...) }

func (p *Page) layout(n *html.Node, y float64) float64 {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			return y + textHeight(s) + blockGap
		}
		return y
	case html.ElementNode:
	default:
		return y
	}

	var h float64
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		text := heading.TextContent(heading.FromHTML(n))
		lines := math.Max(1, math.Ceil(float64(utf8.RuneCountInString(text))/charsPerLine))
		h = headingHeight[n.DataAtom] * lines
	case atom.P, atom.Li, atom.Dt, atom.Dd, atom.Figcaption:
		if hasBlockChild(n) {
			return p.children(n, y)
		}
		h = textHeight(heading.TextContent(heading.FromHTML(n)))
	case atom.Pre:
		h = float64(strings.Count(strings.TrimRight(heading.TextContent(heading.FromHTML(n)), "\n"), "\n")+1)*codeLine + 2*blockGap
	case atom.Img:
		h = imageHeight
	case atom.Hr:
		h = blockGap
	case atom.Tr:
		h = lineHeight + 8
	case atom.Script, atom.Style:
		return y
	default:
		return p.children(n, y)
	}

	if id := attrValue(n, "id"); id != "" {
		p.record(id, Box{Top: y, Height: h})
	}
	return y + h + blockGap
}

func (p *Page) children(n *html.Node, y float64) float64 {
	start := y
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		y = p.layout(c, y)
	}
	if id := attrValue(n, "id"); id != "" {
		p.record(id, Box{Top: start, Height: y - start})
	}
	return y
}

func (p *Page) record(id string, b Box) {
	if _, dup := p.boxes[id]; dup {
		return
	}
	p.boxes[id] = b
	p.order = append(p.order, id)
}

func textHeight(s string) float64 {
	n := utf8.RuneCountInString(strings.Join(strings.Fields(s), " "))
	if n == 0 {
		return 0
	}
	return math.Ceil(float64(n)/charsPerLine) * lineHeight
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.P, atom.Ul, atom.Ol, atom.Pre, atom.Div, atom.Blockquote, atom.Table, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
