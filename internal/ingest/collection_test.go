package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"folio/internal/domain/content"
	domainerr "folio/internal/domain/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPostsAllSortsByDate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.md":      "---\ntitle: A\ndate: 2024-01-01\ncategory: 摄影\n---\nbody a\n",
		"b.md":      "---\ntitle: B\ndate: \"2024-03-01\"\ncategory: 技术\n---\nbody b\n",
		"c.md":      "---\ntitle: C\ndate: 2024-01-01\ncategory: 摄影\n---\n",
		"notes.txt": "ignored",
	})
	if err := os.Mkdir(filepath.Join(dir, "drafts.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	posts := Posts(dir)
	if got := strings.Join(posts.Keys(), ","); got != "a,b,c" {
		t.Errorf("Keys = %q, want a,b,c", got)
	}

	all := posts.All()
	var slugs []string
	for _, a := range all {
		slugs = append(slugs, a.Meta.Slug)
	}
	if got := strings.Join(slugs, ","); got != "b,a,c" {
		t.Errorf("All order = %q, want b,a,c", got)
	}
	if all[0].Meta.Date != "2024-03-01" || all[1].Meta.Date != "2024-01-01" {
		t.Errorf("dates = %q, %q", all[0].Meta.Date, all[1].Meta.Date)
	}

	again := posts.All()
	for i := range all {
		if again[i].Meta.Slug != all[i].Meta.Slug {
			t.Fatalf("All is not stable across calls")
		}
	}

	if got := strings.Join(Categories(all), ","); got != "技术,摄影" {
		t.Errorf("Categories = %q", got)
	}
}

func TestGetMissingIsAbsent(t *testing.T) {
	posts := Posts(t.TempDir())
	if _, ok := posts.Get("nope"); ok {
		t.Error("Get(nope) should be absent")
	}
	_, err := posts.Load("nope")
	if !errors.Is(err, domainerr.ErrNotFound) {
		t.Errorf("Load error = %v, want ErrNotFound", err)
	}
	for _, key := range []string{"", "../secret", "a/b", `a\b`} {
		if _, ok := posts.Get(key); ok {
			t.Errorf("Get(%q) should be absent", key)
		}
	}
}

func TestMissingDirectory(t *testing.T) {
	posts := Posts(filepath.Join(t.TempDir(), "missing"))
	if keys := posts.Keys(); len(keys) != 0 {
		t.Errorf("Keys = %v, want none", keys)
	}
	if all := posts.All(); len(all) != 0 {
		t.Errorf("All = %v, want none", all)
	}
}

func TestScanReportsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"good.md": "---\ntitle: Good\ndate: 2024-05-05\n---\nok\n",
		"bad.md":  "---\ntitle: [unclosed\n---\nbody\n",
	})
	recs, warns := Posts(dir).Scan()
	if len(recs) != 1 || recs[0].Meta.Slug != "good" {
		t.Errorf("recs = %+v", recs)
	}
	if len(warns) != 1 || !strings.HasSuffix(warns[0].Path, "bad.md") {
		t.Errorf("warns = %+v", warns)
	}
}

func TestDecodePost(t *testing.T) {
	raw := "---\r\ntitle: \" Hello \"\r\ndate: 2024-03-04T23:30:00+08:00\r\nreadTime: 5 min\r\nauthor: Ro\r\nexcerpt: short\r\n---\r\n\r\n# Heading\r\n"
	a, err := DecodePost("hello", []byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	want := content.ArticleMeta{
		Slug:     "hello",
		Title:    "Hello",
		Date:     "2024-03-04",
		ReadTime: "5 min",
		Author:   "Ro",
		Excerpt:  "short",
	}
	if a.Meta != want {
		t.Errorf("meta = %+v, want %+v", a.Meta, want)
	}
	if got := string(a.Body); got != "# Heading\n" {
		t.Errorf("body = %q", got)
	}
}

func TestDecodePostWithoutFrontMatter(t *testing.T) {
	a, err := DecodePost("plain", []byte("just text\n"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Meta.Slug != "plain" || a.Meta.Title != "" || a.Meta.Date != "" {
		t.Errorf("meta = %+v", a.Meta)
	}
	if string(a.Body) != "just text\n" {
		t.Errorf("body = %q", a.Body)
	}
}

func TestPhotos(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"tokyo-1.md": "---\nsrc: /photos/tokyo-1.jpg\ntitle: Tower\nlocation: Tokyo\ndate: 2023-10-02\ncamera: X100V\n---\n",
		"kyoto-1.md": "---\nsrc: /photos/kyoto-1.jpg\ntitle: Gate\nlocation: Kyoto\ndate: 2023-11-12\ncamera: X100V\nlens: 23mm\nheight: 420\n---\n",
		"tokyo-2.md": "---\nsrc: /photos/tokyo-2.jpg\ntitle: Street\nlocation: Tokyo\ndate: 2023-09-30\ncamera: X100V\n---\n",
	})
	photos := Photos(dir).All()
	if len(photos) != 3 {
		t.Fatalf("got %d photos", len(photos))
	}
	if photos[0].ID != "kyoto-1" || photos[0].Height != 420 || photos[0].Lens != "23mm" {
		t.Errorf("first = %+v", photos[0])
	}
	if photos[1].Height != content.DefaultPhotoHeight || photos[1].Lens != "" {
		t.Errorf("defaults not applied: %+v", photos[1])
	}
	if got := strings.Join(Locations(photos), ","); got != "Kyoto,Tokyo" {
		t.Errorf("Locations = %q", got)
	}
}
