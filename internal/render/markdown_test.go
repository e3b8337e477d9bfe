package render

import (
	"bytes"
	"strings"
	"testing"

	"folio/internal/domain/content"
	"folio/internal/heading"

	"golang.org/x/net/html"
)

const sampleBody = "# Intro\n\n" +
	"Some text.\n\n" +
	"## Intro\n\n" +
	"## **Bold** and `code`\n\n" +
	"## 摄影 技巧\n\n" +
	"## !!!\n\n" +
	"Setup\n-----\n\n" +
	"```go\n# not a heading\nfunc main() {}\n```\n\n" +
	"## Tom &amp; Jerry\n\n" +
	"## see <https://go.dev>\n"

func TestRenderAssignsHeadingIDs(t *testing.T) {
	res, err := NewMarkdownRenderer().Render([]byte(sampleBody))
	if err != nil {
		t.Fatal(err)
	}
	html := string(res.HTML)
	for _, want := range []string{
		`<h1 id="intro" style="scroll-margin-top:96px">Intro</h1>`,
		`<h2 id="intro-1" style="scroll-margin-top:96px">Intro</h2>`,
		`id="摄影-技巧"`,
		`id="setup"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %s\n%s", want, html)
		}
	}
	if strings.Contains(html, `id="not-a-heading"`) {
		t.Error("fenced code produced a heading")
	}
	if len(res.Outline) != 8 {
		t.Fatalf("outline has %d entries: %+v", len(res.Outline), res.Outline)
	}
}

// nestedBody puts headings where a line scanner would lose them: in code
// spans that look like tags, list items, block quotes and raw HTML blocks.
const nestedBody = "## `<b>` tag\n\ntext\n\n" +
	"- ## Intro\n\n" +
	"## Intro\n\n" +
	"> ### Quoted *note*\n\n" +
	"1. item\n\n   ### In ordered list\n\n" +
	"<div>\n<h2>Raw block</h2>\n</div>\n\n" +
	"## Intro\n"

func TestRenderedAndRawOutlinesAgree(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
		size int
	}{
		{"sample", sampleBody, 8},
		{"nested", nestedBody, 6},
	} {
		body := []byte(tc.body)
		res, err := NewMarkdownRenderer().Render(body)
		if err != nil {
			t.Fatal(err)
		}
		root, err := html.Parse(bytes.NewReader(res.HTML))
		if err != nil {
			t.Fatal(err)
		}

		check := func(name string, got content.Outline) {
			t.Helper()
			if len(got) != len(res.Outline) {
				t.Fatalf("%s/%s has %d entries, rendered has %d:\n%+v\n%+v", tc.name, name, len(got), len(res.Outline), got, res.Outline)
			}
			for i := range got {
				if got[i] != res.Outline[i] {
					t.Errorf("%s/%s[%d] = %+v, rendered %+v", tc.name, name, i, got[i], res.Outline[i])
				}
			}
		}
		if len(res.Outline) != tc.size {
			t.Errorf("%s: rendered outline has %d entries, want %d: %+v", tc.name, len(res.Outline), tc.size, res.Outline)
		}
		check("raw", heading.Extract(body))
		check("html", heading.FromHTMLDocument(root))
	}
}

func TestRenderNestedHeadingIDs(t *testing.T) {
	res, err := NewMarkdownRenderer().Render([]byte(nestedBody))
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, h := range res.Outline {
		ids = append(ids, h.ID)
	}
	want := "b-tag,intro,intro-1,quoted-note,in-ordered-list,intro-2"
	if got := strings.Join(ids, ","); got != want {
		t.Errorf("ids = %s, want %s", got, want)
	}
	if !strings.Contains(string(res.HTML), `<h2>Raw block</h2>`) {
		t.Error("raw HTML heading was rewritten")
	}
}

func TestRenderIsRepeatable(t *testing.T) {
	md := NewMarkdownRenderer()
	a, err := md.Render([]byte("## ???\n\n## Intro\n"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := md.Render([]byte("## ???\n\n## Intro\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.HTML, b.HTML) {
		t.Errorf("same body rendered differently:\n%s\n%s", a.HTML, b.HTML)
	}
	// a previous document must not leak collision counts
	if b.Outline[1].ID != "intro" {
		t.Errorf("second render id = %q, want intro", b.Outline[1].ID)
	}
}
