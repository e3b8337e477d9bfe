// Package feed writes the RSS 2.0 feed of all posts.
package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"folio/internal/domain/config"
	"folio/internal/domain/content"
)

const (
	nsContent = "http://purl.org/rss/1.0/modules/content/"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsAtom    = "http://www.w3.org/2005/Atom"
)

type RSS struct {
	XMLName      xml.Name `xml:"rss"`
	Version      string   `xml:"version,attr"`
	XMLNSContent string   `xml:"xmlns:content,attr"`
	XMLNSDC      string   `xml:"xmlns:dc,attr"`
	XMLNSAtom    string   `xml:"xmlns:atom,attr"`
	Channel      Channel  `xml:"channel"`
}

type Channel struct {
	Title         string   `xml:"title"`
	Description   cdata    `xml:"description"`
	Link          string   `xml:"link"`
	AtomLink      atomLink `xml:"atom:link"`
	Generator     string   `xml:"generator,omitempty"`
	LastBuildDate string   `xml:"lastBuildDate"`
	PubDate       string   `xml:"pubDate"`
	Language      string   `xml:"language,omitempty"`
	TTL           int      `xml:"ttl,omitempty"`
	Items         []Item   `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type Item struct {
	Title       string   `xml:"title"`
	Description cdata    `xml:"description"`
	Link        string   `xml:"link"`
	GUID        guid     `xml:"guid"`
	Categories  []string `xml:"category"`
	Creator     string   `xml:"dc:creator,omitempty"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Content     cdata    `xml:"content:encoded"`
}

type guid struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

// Option adjusts how Build fills items.
type Option func(*builder)

type builder struct {
	body func(content.Article) (string, error)
	now  time.Time
}

// WithBody sets how an article's full content is produced, e.g. rendered
// HTML. The default embeds the markdown body.
func WithBody(fn func(content.Article) (string, error)) Option {
	return func(b *builder) { b.body = fn }
}

// At fixes the channel build date.
func At(t time.Time) Option {
	return func(b *builder) { b.now = t }
}

// Build maps articles to a feed, keeping their order. Zero articles give a
// valid channel with no items.
func Build(cfg config.Config, articles []content.Article, opts ...Option) (*RSS, error) {
	b := builder{
		body: func(a content.Article) (string, error) { return strings.TrimSpace(string(a.Body)), nil },
		now:  cfg.Build.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	if b.now.IsZero() {
		b.now = time.Now()
	}

	base := cfg.BaseURL()
	items := make([]Item, 0, len(articles))
	for _, a := range articles {
		body, err := b.body(a)
		if err != nil {
			return nil, fmt.Errorf("feed item %s: %w", a.Meta.Slug, err)
		}
		link := BuildURL(base, "posts", a.Meta.Slug)
		item := Item{
			Title:       a.Meta.Title,
			Description: cdata{a.Meta.Excerpt},
			Link:        link,
			GUID:        guid{IsPermaLink: true, Value: link},
			Creator:     firstNonEmpty(a.Meta.Author, cfg.Site.Author),
			Content:     cdata{body},
		}
		if a.Meta.Category != "" {
			item.Categories = []string{a.Meta.Category}
		}
		if t, ok := a.Meta.Date.Time(); ok {
			item.PubDate = t.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	stamp := b.now.UTC().Format(time.RFC1123Z)
	return &RSS{
		Version:      "2.0",
		XMLNSContent: nsContent,
		XMLNSDC:      nsDC,
		XMLNSAtom:    nsAtom,
		Channel: Channel{
			Title:         cfg.Site.Title,
			Description:   cdata{cfg.Site.Description},
			Link:          strings.TrimRight(cfg.Site.URL, "/"),
			AtomLink:      atomLink{Href: BuildURL(base, cfg.Feed.File), Rel: "self", Type: "application/rss+xml"},
			Generator:     cfg.Feed.Generator,
			LastBuildDate: stamp,
			PubDate:       stamp,
			Language:      cfg.Site.Language,
			TTL:           cfg.Feed.TTL,
			Items:         items,
		},
	}, nil
}

// BuildURL joins base with escaped path segments.
func BuildURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// Marshal renders the feed with an XML header, indented.
func (r *RSS) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
