package content

import "strings"

type ArticleMeta struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Date     Date   `json:"date"`
	ReadTime string `json:"readTime"`
	Category string `json:"category"`
	Author   string `json:"author"`
	Excerpt  string `json:"excerpt"`
}

// Article is one post loaded from content/posts/<slug>.md. Body holds the
// markdown after the front matter and is never modified once loaded.
type Article struct {
	Meta ArticleMeta
	Body []byte
}

func (a Article) Key() string    { return a.Meta.Slug }
func (a Article) SortDate() Date { return a.Meta.Date }

func (m *ArticleMeta) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Category = strings.TrimSpace(m.Category)
	m.Author = strings.TrimSpace(m.Author)
	m.Excerpt = strings.TrimSpace(m.Excerpt)
	m.ReadTime = strings.TrimSpace(m.ReadTime)
	m.Date = NormalizeDate(m.Date)
}

// Heading is one entry of an article outline.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Outline lists the headings of one document in document order. IDs are
// unique within the outline.
type Outline []Heading

func (o Outline) IDs() []string {
	out := make([]string, len(o))
	for i, h := range o {
		out[i] = h.ID
	}
	return out
}

func (o Outline) Find(id string) (Heading, bool) {
	for _, h := range o {
		if h.ID == id {
			return h, true
		}
	}
	return Heading{}, false
}
