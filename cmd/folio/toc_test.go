package main

import (
	"bytes"
	"strings"
	"testing"

	"folio/internal/render"
)

func TestWalkOutline(t *testing.T) {
	para := strings.Repeat("Lorem ipsum dolor sit amet. ", 60)
	body := []byte("# Intro\n\n" + para + "\n\n## Setup\n\n" + para + "\n\n" + para + "\n\n" + para + "\n")
	md, err := render.NewMarkdownRenderer().Render(body)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := walkOutline(&out, body, md.HTML, 900); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"- Intro  #intro\n",
		"  - Setup  #setup\n",
		"active at top: intro\n",
		"click #setup -> scrollY=",
		"active=setup\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "missing anchor") {
		t.Errorf("rendered page lacks an outline anchor:\n%s", got)
	}
}

func TestWalkOutlineReportsMissingAnchors(t *testing.T) {
	var out bytes.Buffer
	body := []byte("## Intro\n\n## Setup\n")
	rendered := []byte(`<h2 id="intro">Intro</h2><h2>Setup</h2>`)
	if err := walkOutline(&out, body, rendered, 900); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "missing anchor #setup\n") {
		t.Errorf("output = %q", out.String())
	}
	if strings.Contains(out.String(), "missing anchor #intro") {
		t.Errorf("intro reported missing: %q", out.String())
	}
}

func TestWalkOutlineWithoutHeadings(t *testing.T) {
	var out bytes.Buffer
	if err := walkOutline(&out, []byte("just text"), []byte("<p>just text</p>"), 900); err != nil {
		t.Fatal(err)
	}
	if out.String() != "(no headings)\n" {
		t.Errorf("output = %q", out.String())
	}
}
