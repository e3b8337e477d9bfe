package content

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a calendar date in canonical YYYY-MM-DD form. Values that could not
// be parsed keep their trimmed source text.
type Date string

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006-1-2",
}

// NormalizeDate converts a front matter date into a Date. Structured values
// (YAML timestamps) are taken in UTC; strings keep their own calendar day.
// NormalizeDate(NormalizeDate(v)) == NormalizeDate(v).
func NormalizeDate(v any) Date {
	switch x := v.(type) {
	case nil:
		return ""
	case Date:
		return normalizeDateString(string(x))
	case string:
		return normalizeDateString(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return Date(x.UTC().Format(time.DateOnly))
	case *time.Time:
		if x == nil {
			return ""
		}
		return NormalizeDate(*x)
	default:
		return ""
	}
}

func normalizeDateString(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t.Format(time.DateOnly))
		}
	}
	return Date(s)
}

func (d Date) String() string { return string(d) }

// Time returns midnight UTC of the date.
func (d Date) Time() (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Date) Valid() bool {
	_, ok := d.Time()
	return ok
}

// UnmarshalYAML accepts both `date: 2024-01-01` (timestamp) and
// `date: "2024-01-01"` (string).
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		*d = ""
		return nil
	}
	if value.ShortTag() == "!!timestamp" {
		var t time.Time
		if err := value.Decode(&t); err == nil {
			*d = NormalizeDate(t)
			return nil
		}
	}
	*d = NormalizeDate(value.Value)
	return nil
}

// Compare orders dates chronologically. Unparsable dates sort before every
// valid date and compare equal to each other.
func (d Date) Compare(o Date) int {
	a, b := d.Ordinal(), o.Ordinal()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Ordinal is the date as yyyymmdd, 0 when unparsable.
func (d Date) Ordinal() uint32 {
	t, ok := d.Time()
	if !ok {
		return 0
	}
	return uint32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}
