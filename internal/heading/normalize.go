// Package heading derives anchor identifiers and outlines from markdown
// headings. The same Normalize and IDs are used by the markdown renderer
// (which writes id attributes) and by the table of contents (which links to
// them), so both sides always agree.
package heading

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ScrollMargin is the height in pixels of the fixed navigation bar. Headings
// get it as scroll-margin-top so anchor jumps land below the bar.
const ScrollMargin = 96

// ScrollMarginStyle is the inline style set on rendered headings.
var ScrollMarginStyle = "scroll-margin-top:" + strconv.Itoa(ScrollMargin) + "px"

// Normalize turns heading text into a base anchor id: lower-cased, trimmed,
// whitespace runs become one hyphen, everything except letters (any
// script), digits, combining marks, '_' and '-' is dropped, hyphen runs
// collapse and leading/trailing hyphens go. The result may be empty.
func Normalize(text string) string {
	// cases.Caser is stateful, one per call
	s := cases.Lower(language.Und).String(norm.NFC.String(text))
	s = strings.TrimSpace(s)

	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			out = append(out, r)
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	return string(out)
}

// DisplayText collapses whitespace runs in heading text to single spaces.
func DisplayText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
