package build

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"folio/internal/app"
	dbuild "folio/internal/domain/build"
	"folio/internal/domain/config"
	"folio/internal/domain/content"
	"folio/internal/domain/site"
	"folio/internal/feed"
	"folio/internal/gallery"
	"folio/internal/index"
	"folio/internal/ingest"
	"folio/internal/render"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type Builder struct {
	Cfg config.Config
	// Force rewrites every page even when its fingerprint is unchanged.
	Force bool
}

type Result struct {
	Posts    int
	Photos   int
	Written  int
	Skipped  int
	FeedPath string
	Warnings []ingest.Warning
}

// siteData is everything one run renders pages from.
type siteData struct {
	posts    []content.Article
	photos   []content.Photo
	rendered map[string]render.MarkdownResult
	thumbs   map[string]bool
	about    []byte // rendered about.md, nil without one
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	posts, warns := ingest.Posts(b.Cfg.PostsPath()).Scan()
	res.Warnings = append(res.Warnings, warns...)
	photos, warns := ingest.Photos(b.Cfg.PhotosPath()).Scan()
	res.Warnings = append(res.Warnings, warns...)

	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	if err := st.Rebuild(posts, photos); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}
	if res.Posts, res.Photos, err = st.Counts(); err != nil {
		return nil, err
	}
	log.Printf("[build] indexed %d posts, %d photos", res.Posts, res.Photos)

	theme := render.ThemeFS(b.Cfg.Build.ThemeDir, b.Cfg.Build.Theme)
	tpl, err := render.NewTemplateRendererFS(theme)
	if err != nil {
		return nil, fmt.Errorf("load theme(%s): %w", b.Cfg.Build.Theme, err)
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	data := &siteData{posts: posts, photos: photos, thumbs: map[string]bool{}}
	if data.rendered, err = renderMarkdown(ctx, posts); err != nil {
		return nil, err
	}
	if about, ok := ingest.Posts(b.Cfg.Build.ContentDir).Get(AboutKey); ok {
		md, err := render.NewMarkdownRenderer().Render(about.Body)
		if err != nil {
			return nil, fmt.Errorf("markdown render(%s): %w", AboutKey, err)
		}
		data.about = md.HTML
	}
	if b.Cfg.Build.Thumbnails {
		th := gallery.Thumbnailer{StaticDir: b.Cfg.Build.StaticDir, PublicDir: outDir}
		data.thumbs, warns = th.Generate(ctx, photos)
		res.Warnings = append(res.Warnings, warns...)
	}

	if err := b.buildPages(ctx, st, tpl, theme, data, res); err != nil {
		return nil, err
	}

	// 订阅源写不出来就是构建失败
	res.FeedPath, err = feed.Generate(b.Cfg, posts, outDir,
		feed.WithBody(func(a content.Article) (string, error) {
			return string(data.rendered[a.Meta.Slug].HTML), nil
		}),
		feed.At(b.Cfg.Build.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("generate feed: %w", err)
	}

	if err := copyTree(theme, "static", filepath.Join(outDir, "static")); err != nil {
		return nil, fmt.Errorf("copy theme assets: %w", err)
	}
	if err := b.copySiteStatic(outDir); err != nil {
		return nil, fmt.Errorf("copy static dir: %w", err)
	}
	return res, nil
}

func renderMarkdown(ctx context.Context, posts []content.Article) (map[string]render.MarkdownResult, error) {
	md := render.NewMarkdownRenderer()
	results := make([]render.MarkdownResult, len(posts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range posts {
		i, a := i, a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := md.Render(a.Body)
			if err != nil {
				return fmt.Errorf("markdown render(%s): %w", a.Meta.Slug, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]render.MarkdownResult, len(posts))
	for i, a := range posts {
		out[a.Meta.Slug] = results[i]
	}
	return out, nil
}

func (b *Builder) buildPages(
	ctx context.Context,
	st *index.Store,
	tpl render.Renderer,
	theme fs.FS,
	data *siteData,
	res *Result,
) error {
	routes, err := (&app.RouteBuilder{Index: st}).BuildAll()
	if err != nil {
		return fmt.Errorf("list routes: %w", err)
	}
	themeHash, err := hashTree(theme)
	if err != nil {
		return fmt.Errorf("hash theme: %w", err)
	}
	cfgBytes, err := yaml.Marshal(b.Cfg.Site)
	if err != nil {
		return err
	}
	configHash := dbuild.HashBytes(cfgBytes)

	var mu sync.Mutex
	hashes := make(map[string]string)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, r := range routes {
		r := r
		g.Go(func() error {
			page, err := b.renderRoute(ctx, st, tpl, data, r)
			if err != nil {
				return fmt.Errorf("build %s: %w", r, err)
			}
			fp := dbuild.Fingerprint{
				ContentHash: dbuild.HashBytes(page),
				ThemeHash:   themeHash,
				ConfigHash:  configHash,
			}
			hash := fp.ComputeRenderHash()
			out := filepath.Join(b.Cfg.Build.PublicDir, filepath.FromSlash(r.OutPath()))

			prev, err := st.RenderHash(r.OutPath())
			if err != nil {
				return err
			}
			if !b.Force && prev == hash && fileExists(out) {
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}
			if err := writeFile(out, page); err != nil {
				return err
			}
			mu.Lock()
			res.Written++
			hashes[r.OutPath()] = hash
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	keys := make([]string, 0, len(hashes))
	for k := range hashes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := st.PutRenderHash(k, hashes[k]); err != nil {
			return fmt.Errorf("store fingerprint: %w", err)
		}
	}
	log.Printf("[build] %d pages written, %d unchanged", res.Written, res.Skipped)
	return nil
}

func (b *Builder) renderRoute(
	ctx context.Context,
	st *index.Store,
	tpl render.Renderer,
	data *siteData,
	r site.Route,
) ([]byte, error) {
	switch r.Kind {
	case site.RouteIndex, site.RouteCategory:
		page, err := HomePage(st, b.Cfg.Site, r.Key, "")
		if err != nil {
			return nil, err
		}
		return tpl.RenderHome(ctx, page)
	case site.RoutePost:
		page, ok := PostPage(b.Cfg.Site, data.posts, data.rendered, r.Key)
		if !ok {
			return nil, fmt.Errorf("post %q vanished during build", r.Key)
		}
		return tpl.RenderPost(ctx, page)
	case site.RoutePhotos, site.RouteLocation:
		page, err := GalleryPage(st, b.Cfg.Site, r.Key, data.thumbs)
		if err != nil {
			return nil, err
		}
		return tpl.RenderGallery(ctx, page)
	case site.RouteAbout:
		page, err := AboutPage(st, b.Cfg.Site, data.about)
		if err != nil {
			return nil, err
		}
		return tpl.RenderAbout(ctx, page)
	case site.RouteNotFound:
		return tpl.RenderNotFound(ctx, render.NotFoundPage{Site: b.Cfg.Site, Title: "404"})
	}
	return nil, fmt.Errorf("unknown route kind %q", r.Kind)
}

// HomePage lists posts of category (all when empty) matching query. The
// category chips keep the order categories first appear in, newest first.
func HomePage(st *index.Store, s config.SiteConfig, category, query string) (render.HomePage, error) {
	all, _, err := st.ListPosts(index.ListOptions{})
	if err != nil {
		return render.HomePage{}, err
	}
	posts, total, err := st.ListPosts(index.ListOptions{Category: category, Query: query})
	if err != nil {
		return render.HomePage{}, err
	}
	var cats []string
	seen := make(map[string]bool)
	for _, m := range all {
		if m.Category != "" && !seen[m.Category] {
			seen[m.Category] = true
			cats = append(cats, m.Category)
		}
	}
	return render.HomePage{
		Site:       s,
		Posts:      posts,
		Categories: cats,
		Category:   category,
		Query:      query,
		Total:      total,
		Title:      category,
	}, nil
}

// PostPage assembles the page for slug. posts must be newest first; Prev
// is the older neighbour and Next the newer one.
func PostPage(s config.SiteConfig, posts []content.Article, rendered map[string]render.MarkdownResult, slug string) (render.PostPage, bool) {
	for i, a := range posts {
		if a.Meta.Slug != slug {
			continue
		}
		md := rendered[slug]
		page := render.PostPage{
			Site:  s,
			Meta:  a.Meta,
			HTML:  template.HTML(md.HTML),
			TOC:   md.Outline,
			Title: a.Meta.Title,
		}
		if i+1 < len(posts) {
			page.Prev = &posts[i+1].Meta
		}
		if i > 0 {
			page.Next = &posts[i-1].Meta
		}
		return page, true
	}
	return render.PostPage{}, false
}

// GalleryPage lists photos at location (all when empty). Photos with a
// generated thumbnail show it in the grid.
func GalleryPage(st *index.Store, s config.SiteConfig, location string, thumbs map[string]bool) (render.GalleryPage, error) {
	photos, err := st.ListPhotos(location)
	if err != nil {
		return render.GalleryPage{}, err
	}
	stats, err := st.Locations()
	if err != nil {
		return render.GalleryPage{}, err
	}
	page := render.GalleryPage{Site: s, Location: location, Title: "摄影"}
	if location != "" {
		page.Title = location
	}
	for _, l := range stats {
		page.Locations = append(page.Locations, l.Name)
	}
	for _, p := range photos {
		item := render.GalleryItem{Photo: p, Thumb: p.Src}
		if thumbs[p.ID] {
			item.Thumb = s.Path + "/" + gallery.ThumbPath(p.ID)
		}
		page.Photos = append(page.Photos, item)
	}
	return page, nil
}

// AboutKey names the about page source, content/about.md.
const AboutKey = "about"

// AboutPage fills the about page with the rendered about.md and the site
// totals.
func AboutPage(st *index.Store, s config.SiteConfig, html []byte) (render.AboutPage, error) {
	posts, photos, err := st.Counts()
	if err != nil {
		return render.AboutPage{}, err
	}
	cats, err := st.Categories()
	if err != nil {
		return render.AboutPage{}, err
	}
	page := render.AboutPage{
		Site:   s,
		HTML:   template.HTML(html),
		Posts:  posts,
		Photos: photos,
		Title:  "关于我",
	}
	for _, c := range cats {
		page.Categories = append(page.Categories, c.Name)
	}
	return page, nil
}

func (b *Builder) copySiteStatic(outDir string) error {
	dir := b.Cfg.Build.StaticDir
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}
	return copyTree(os.DirFS(dir), ".", outDir)
}

func writeFile(full string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
