package feed

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"folio/internal/domain/config"
	"folio/internal/domain/content"
)

type parsedFeed struct {
	Channel struct {
		Title string `xml:"title"`
		TTL   int    `xml:"ttl"`
		Items []struct {
			Title      string   `xml:"title"`
			Link       string   `xml:"link"`
			GUID       string   `xml:"guid"`
			PubDate    string   `xml:"pubDate"`
			Categories []string `xml:"category"`
			Creator    string   `xml:"http://purl.org/dc/elements/1.1/ creator"`
			Encoded    string   `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
		} `xml:"item"`
	} `xml:"channel"`
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Site.Title = "zch's Blog"
	cfg.Site.Author = "Site Owner"
	cfg.Build.Now = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return cfg
}

func articles() []content.Article {
	return []content.Article{
		{
			Meta: content.ArticleMeta{Slug: "b", Title: "开始使用 Go", Date: "2024-06-01", Category: "后端", Author: "Ro", Excerpt: "short"},
			Body: []byte("\n# Intro\n\nText with ]]> inside.\n"),
		},
		{
			Meta: content.ArticleMeta{Slug: "a", Title: "Second & last", Date: "2024-01-01"},
			Body: []byte("body"),
		},
	}
}

func TestBuildRoundTrip(t *testing.T) {
	r, err := Build(testConfig(), articles())
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var got parsedFeed
	if err := xml.Unmarshal(data, &got); err != nil {
		t.Fatalf("feed is not well-formed: %v\n%s", err, data)
	}
	if got.Channel.TTL != 60 {
		t.Errorf("ttl = %d, want 60", got.Channel.TTL)
	}
	items := got.Channel.Items
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	want := []struct{ title, link string }{
		{"开始使用 Go", "https://rostreet.github.io/blog/posts/b"},
		{"Second & last", "https://rostreet.github.io/blog/posts/a"},
	}
	for i, w := range want {
		if items[i].Title != w.title {
			t.Errorf("item %d title = %q, want %q", i, items[i].Title, w.title)
		}
		if items[i].Link != w.link || items[i].GUID != w.link {
			t.Errorf("item %d link = %q guid = %q, want %q", i, items[i].Link, items[i].GUID, w.link)
		}
	}

	first := items[0]
	if first.PubDate != "Sat, 01 Jun 2024 00:00:00 +0000" {
		t.Errorf("pubDate = %q", first.PubDate)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "后端" {
		t.Errorf("categories = %v", first.Categories)
	}
	if first.Creator != "Ro" || items[1].Creator != "Site Owner" {
		t.Errorf("creators = %q, %q", first.Creator, items[1].Creator)
	}
	if first.Encoded != "# Intro\n\nText with ]]> inside." {
		t.Errorf("content:encoded = %q", first.Encoded)
	}
	if len(items[1].Categories) != 0 {
		t.Errorf("empty category should be omitted: %v", items[1].Categories)
	}
}

func TestBuildWithRenderedBody(t *testing.T) {
	r, err := Build(testConfig(), articles()[:1], WithBody(func(a content.Article) (string, error) {
		return "<p>" + a.Meta.Slug + "</p>", nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Channel.Items[0].Content.Value; got != "<p>b</p>" {
		t.Errorf("content = %q", got)
	}
}

func TestGenerateEmptyFeed(t *testing.T) {
	public := filepath.Join(t.TempDir(), "does", "not", "exist")
	path, err := Generate(testConfig(), nil, public)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if path != filepath.Join(public, "rss.xml") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got parsedFeed
	if err := xml.Unmarshal(data, &got); err != nil {
		t.Fatalf("empty feed is not well-formed: %v", err)
	}
	if got.Channel.Title != "zch's Blog" || len(got.Channel.Items) != 0 {
		t.Errorf("channel = %+v", got.Channel)
	}
	if !strings.HasPrefix(string(data), "<?xml") {
		t.Error("missing XML header")
	}
}

func TestWriteFailureIsReturned(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "public")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Generate(testConfig(), articles(), blocker); err == nil {
		t.Fatal("Generate into a file path should fail")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://x.io/blog", []string{"posts", "hi"}, "https://x.io/blog/posts/hi"},
		{"https://x.io/", []string{"rss.xml"}, "https://x.io/rss.xml"},
		{"https://x.io", []string{"posts", "a b"}, "https://x.io/posts/a%20b"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}
