package heading

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"golang.org/x/net/html"
)

// Node is the rendered content of a heading: a text leaf, a number leaf, a
// sequence of nodes, or an element wrapping children. The set is closed.
type Node interface {
	isNode()
}

type Text string

type Number float64

type Sequence []Node

type Element struct {
	Tag      string
	Children Sequence
}

func (Text) isNode()     {}
func (Number) isNode()   {}
func (Sequence) isNode() {}
func (Element) isNode()  {}

// TextContent concatenates every leaf under n in order. Nil yields "".
func TextContent(n Node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

func writeText(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case Text:
		b.WriteString(string(v))
	case Number:
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case Sequence:
		for _, c := range v {
			writeText(b, c)
		}
	case Element:
		writeText(b, v.Children)
	}
}

// FromAST converts the inline children of a goldmark heading into a Node.
// src is the markdown source the heading was parsed from.
func FromAST(h *ast.Heading, src []byte) Node {
	return Element{Tag: "h" + strconv.Itoa(h.Level), Children: astChildren(h, src)}
}

func astChildren(n ast.Node, src []byte) Sequence {
	var seq Sequence
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if node := fromASTNode(c, src); node != nil {
			seq = append(seq, node)
		}
	}
	return seq
}

func fromASTNode(n ast.Node, src []byte) Node {
	switch v := n.(type) {
	case *ast.Text:
		s := html.UnescapeString(string(v.Segment.Value(src)))
		if v.SoftLineBreak() || v.HardLineBreak() {
			s += "\n"
		}
		return Text(s)
	case *ast.String:
		return Text(html.UnescapeString(string(v.Value)))
	case *ast.AutoLink:
		return Element{Tag: "a", Children: Sequence{Text(v.Label(src))}}
	case *ast.RawHTML:
		// tags only; the text between them comes as sibling Text nodes
		return nil
	case *east.FootnoteLink:
		return Element{Tag: "sup", Children: Sequence{Number(v.Index)}}
	case *ast.CodeSpan:
		return Element{Tag: "code", Children: astChildren(v, src)}
	case *ast.Emphasis:
		tag := "em"
		if v.Level == 2 {
			tag = "strong"
		}
		return Element{Tag: tag, Children: astChildren(v, src)}
	case *ast.Link:
		return Element{Tag: "a", Children: astChildren(v, src)}
	case *ast.Image:
		return Element{Tag: "img", Children: astChildren(v, src)}
	default:
		return Element{Tag: strings.ToLower(n.Kind().String()), Children: astChildren(n, src)}
	}
}

// FromHTML converts a parsed HTML subtree into a Node. Comments contribute
// nothing; <img> contributes its alt text.
func FromHTML(n *html.Node) Node {
	if n == nil {
		return nil
	}
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		if n.Data == "img" {
			return Element{Tag: "img", Children: Sequence{Text(attr(n, "alt"))}}
		}
		return Element{Tag: n.Data, Children: htmlChildren(n)}
	case html.DocumentNode:
		return htmlChildren(n)
	default:
		return Sequence{}
	}
}

func htmlChildren(n *html.Node) Sequence {
	var seq Sequence
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		seq = append(seq, FromHTML(c))
	}
	return seq
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
