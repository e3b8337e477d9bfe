package build

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"folio/internal/domain/config"
)

func put(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newSite(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	put(t, filepath.Join(dir, "content/posts/hello-go.md"), `---
title: Hello Go
date: 2024-03-01
category: 技术
readTime: 3 min
excerpt: First steps
---
# Intro

Some text.

## Setup

More text.
`)
	put(t, filepath.Join(dir, "content/posts/kyoto-walk.md"), `---
title: Kyoto Walk
date: 2024-05-20
category: 摄影
---
# 摄影 技巧
`)
	put(t, filepath.Join(dir, "content/about.md"), "---\ntitle: About\n---\nHi, I write **Go**.\n")
	put(t, filepath.Join(dir, "content/photos/gate.md"), `---
src: /images/gate.png
title: Gate
location: Kyoto
date: 2023-11-12
camera: X100V
---
`)
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 32))); err != nil {
		t.Fatal(err)
	}
	put(t, filepath.Join(dir, "static/images/gate.png"), buf.String())

	cfg := config.Default()
	cfg.Site.Title = "Test"
	cfg.Build.ContentDir = filepath.Join(dir, "content")
	cfg.Build.PublicDir = filepath.Join(dir, "public")
	cfg.Build.StaticDir = filepath.Join(dir, "static")
	cfg.Build.ThemeDir = filepath.Join(dir, "themes")
	cfg.Build.IndexPath = filepath.Join(dir, "index.db")
	cfg.Build.Now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestBuildWritesSite(t *testing.T) {
	cfg := newSite(t)
	res, err := (&Builder{Cfg: cfg}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Posts != 2 || res.Photos != 1 || len(res.Warnings) != 0 {
		t.Errorf("result = %+v", res)
	}

	pub := cfg.Build.PublicDir
	for _, rel := range []string{
		"index.html",
		"about/index.html",
		"posts/hello-go/index.html",
		"posts/kyoto-walk/index.html",
		"categories/技术/index.html",
		"categories/摄影/index.html",
		"photos/index.html",
		"photos/Kyoto/index.html",
		"404.html",
		"rss.xml",
		"static/css/site.css",
		"static/js/toc.js",
		"images/gate.png",
		"thumbs/gate.jpg",
	} {
		if _, err := os.Stat(filepath.Join(pub, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if res.Written != 9 {
		t.Errorf("Written = %d, want 9", res.Written)
	}

	post, err := os.ReadFile(filepath.Join(pub, "posts/hello-go/index.html"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<h1 id="intro" style="scroll-margin-top:96px">Intro</h1>`,
		`data-toc-id="setup"`,
		`href="/blog/posts/kyoto-walk/"`,
	} {
		if !strings.Contains(string(post), want) {
			t.Errorf("post page missing %s", want)
		}
	}

	rss, err := os.ReadFile(res.FeedPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(rss), `<h1 id="intro" style="scroll-margin-top:96px">Intro</h1>`) {
		t.Errorf("feed does not carry rendered html:\n%s", rss)
	}

	about, err := os.ReadFile(filepath.Join(pub, "about/index.html"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<strong>Go</strong>", "<strong>2</strong>", `href="/blog/categories/%E6%8A%80%E6%9C%AF/"`} {
		if !strings.Contains(string(about), want) {
			t.Errorf("about page missing %s", want)
		}
	}

	gallery, err := os.ReadFile(filepath.Join(pub, "photos/index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(gallery), `src="/blog/thumbs/gate.jpg"`) {
		t.Errorf("gallery does not use the thumbnail")
	}
}

func TestBuildSkipsUnchangedPages(t *testing.T) {
	cfg := newSite(t)
	if _, err := (&Builder{Cfg: cfg}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	res, err := (&Builder{Cfg: cfg}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Written != 0 || res.Skipped != 9 {
		t.Errorf("second run wrote %d, skipped %d", res.Written, res.Skipped)
	}

	forced, err := (&Builder{Cfg: cfg, Force: true}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if forced.Written != 9 {
		t.Errorf("forced run wrote %d", forced.Written)
	}
}

func TestBuildFailsWhenFeedCannotBeWritten(t *testing.T) {
	cfg := newSite(t)
	// a directory where the feed file should go
	if err := os.MkdirAll(filepath.Join(cfg.Build.PublicDir, cfg.Feed.File), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := (&Builder{Cfg: cfg}).Run(context.Background()); err == nil {
		t.Fatal("Run succeeded without a feed")
	}
}
