package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/domain/config"
	"folio/internal/domain/content"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"content/posts/hello-go.md":   "---\ntitle: Hello Go\ndate: 2024-03-01\ncategory: 技术\nexcerpt: First steps\n---\n# Intro\n\n## Setup\n",
		"content/posts/kyoto-walk.md": "---\ntitle: Kyoto Walk\ndate: 2024-05-20\ncategory: 摄影\n---\n# 摄影 技巧\n",
		"content/photos/gate.md":      "---\nsrc: /images/gate.jpg\ntitle: Gate\nlocation: Kyoto\ndate: 2023-11-12\n---\n",
		"content/photos/tower.md":     "---\nsrc: /images/tower.jpg\ntitle: Tower\nlocation: Tokyo\ndate: 2023-10-02\n---\n",
		"content/about.md":            "---\ntitle: About\n---\nHi, I write **Go**.\n",
		"static/robots.txt":           "User-agent: *\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Build.ContentDir = filepath.Join(dir, "content")
	cfg.Build.StaticDir = filepath.Join(dir, "static")
	cfg.Build.ThemeDir = filepath.Join(dir, "themes")
	cfg.Build.IndexPath = filepath.Join(dir, "index.db")

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPages(t *testing.T) {
	s := newServer(t)
	tests := []struct {
		path string
		code int
		want string
	}{
		{"/blog/", http.StatusOK, "Kyoto Walk"},
		{"/blog/?q=first", http.StatusOK, "Hello Go"},
		{"/blog/posts/hello-go/", http.StatusOK, `id="setup"`},
		{"/blog/posts/hello-go", http.StatusOK, `data-toc-id="intro"`},
		{"/blog/categories/%E6%8A%80%E6%9C%AF/", http.StatusOK, "Hello Go"},
		{"/blog/photos/", http.StatusOK, "Tower"},
		{"/blog/photos/Kyoto/", http.StatusOK, "Gate"},
		{"/blog/about/", http.StatusOK, "<strong>Go</strong>"},
		{"/blog/rss.xml", http.StatusOK, "<content:encoded>"},
		{"/blog/robots.txt", http.StatusOK, "User-agent"},
		{"/blog/static/js/toc.js", http.StatusOK, "IntersectionObserver"},
		{"/blog/posts/missing/", http.StatusNotFound, "文章未找到"},
		{"/blog/categories/none/", http.StatusNotFound, "文章未找到"},
	}
	for _, tt := range tests {
		rec := get(t, s, tt.path)
		if rec.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.code)
			continue
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("GET %s body missing %q", tt.path, tt.want)
		}
	}

	home := get(t, s, "/blog/?q=first").Body.String()
	if strings.Contains(home, "Kyoto Walk</a>") {
		t.Error("search did not filter the list")
	}
	if !strings.Contains(home, "/blog/dev/events") {
		t.Error("live reload hook missing")
	}
}

func TestAPI(t *testing.T) {
	s := newServer(t)

	var list postList
	decode(t, get(t, s, "/blog/api/posts?category=%E6%8A%80%E6%9C%AF"), &list)
	if list.Total != 1 || len(list.Posts) != 1 || list.Posts[0].Slug != "hello-go" {
		t.Errorf("api/posts?category = %+v", list)
	}
	decode(t, get(t, s, "/blog/api/posts?q=nothing"), &list)
	if list.Total != 0 || list.Posts == nil {
		t.Errorf("empty search = %+v", list)
	}

	var post postDetail
	decode(t, get(t, s, "/blog/api/posts/hello-go"), &post)
	if post.Title != "Hello Go" || len(post.TOC) != 2 || post.TOC[1].ID != "setup" {
		t.Errorf("api/posts/hello-go = %+v", post)
	}
	if rec := get(t, s, "/blog/api/posts/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("missing post = %d", rec.Code)
	}

	var photos []content.Photo
	decode(t, get(t, s, "/blog/api/photos?location=Tokyo"), &photos)
	if len(photos) != 1 || photos[0].ID != "tower" {
		t.Errorf("api/photos = %+v", photos)
	}

	var names []string
	decode(t, get(t, s, "/blog/api/categories"), &names)
	if strings.Join(names, ",") != "摄影,技术" {
		t.Errorf("api/categories = %v", names)
	}
	decode(t, get(t, s, "/blog/api/locations"), &names)
	if strings.Join(names, ",") != "Kyoto,Tokyo" {
		t.Errorf("api/locations = %v", names)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode: %v\n%s", err, rec.Body)
	}
}
