package site

import "testing"

func TestRoutePaths(t *testing.T) {
	tests := []struct {
		r       Route
		url     string
		outPath string
	}{
		{Route{Kind: RouteIndex}, "/", "index.html"},
		{Route{Kind: RouteAbout}, "/about/", "about/index.html"},
		{Route{Kind: RoutePost, Key: "hello-go"}, "/posts/hello-go/", "posts/hello-go/index.html"},
		{Route{Kind: RouteCategory, Key: "技术"}, "/categories/%E6%8A%80%E6%9C%AF/", "categories/技术/index.html"},
		{Route{Kind: RouteCategory, Key: "a/b"}, "/categories/a-b/", "categories/a-b/index.html"},
		{Route{Kind: RoutePhotos}, "/photos/", "photos/index.html"},
		{Route{Kind: RouteLocation, Key: "New York"}, "/photos/New%20York/", "photos/New York/index.html"},
		{Route{Kind: RouteRSS}, "/rss.xml", "rss.xml"},
		{Route{Kind: RouteNotFound}, "/404.html", "404.html"},
	}
	for _, tt := range tests {
		if got := tt.r.URLPath(); got != tt.url {
			t.Errorf("%v URLPath = %q, want %q", tt.r, got, tt.url)
		}
		if got := tt.r.OutPath(); got != tt.outPath {
			t.Errorf("%v OutPath = %q, want %q", tt.r, got, tt.outPath)
		}
	}
}

func TestSegment(t *testing.T) {
	for in, want := range map[string]string{
		"  go ": "go",
		"../x":  "--x",
		"":      "untitled",
		".":     "untitled",
	} {
		if got := Segment(in); got != want {
			t.Errorf("Segment(%q) = %q, want %q", in, got, want)
		}
	}
}
