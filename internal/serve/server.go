package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"folio/internal/build"
	"folio/internal/domain/config"
	"folio/internal/domain/content"
	domainerr "folio/internal/domain/errors"
	"folio/internal/feed"
	"folio/internal/index"
	"folio/internal/ingest"
	"folio/internal/render"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const debounceDelay = 200 * time.Millisecond

type Server struct {
	cfg config.Config

	idx   *index.Store
	md    *render.MarkdownRenderer
	tpl   render.Renderer
	theme fs.FS
	e     *echo.Echo

	mu     sync.RWMutex
	posts  []content.Article
	photos []content.Photo

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config) (*Server, error) {
	theme := render.ThemeFS(cfg.Build.ThemeDir, cfg.Build.Theme)
	tpl, err := render.NewTemplateRendererFS(theme)
	if err != nil {
		return nil, fmt.Errorf("serve: failed to create template renderer: %w", err)
	}
	st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("serve: failed to open index: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		idx:      st,
		md:       render.NewMarkdownRenderer(),
		tpl:      tpl,
		theme:    theme,
		e:        echo.New(),
		sseConns: make(map[chan string]struct{}),
	}
	s.setup()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.idx != nil {
		return s.idx.Close()
	}
	return nil
}

func (s *Server) setup() {
	e := s.e
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[serve] %s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	g := e.Group(s.cfg.Site.Path)

	g.GET("/", s.handleHome)
	g.GET("/about/", s.handleAbout)
	g.GET("/posts/:slug/", s.handlePost)
	g.GET("/posts/:slug", s.handlePost)
	g.GET("/categories/:name/", s.handleCategory)
	g.GET("/photos/", s.handleGallery)
	g.GET("/photos/:location/", s.handleGallery)
	g.GET("/rss.xml", s.handleFeed)
	g.GET("/404.html", func(c echo.Context) error { return echo.ErrNotFound })

	api := g.Group("/api")
	api.GET("/posts", s.apiPosts)
	api.GET("/posts/:slug", s.apiPost)
	api.GET("/photos", s.apiPhotos)
	api.GET("/categories", s.apiCategories)
	api.GET("/locations", s.apiLocations)

	// dev SSE
	g.GET("/dev/events", s.handleSSE)

	if static, err := fs.Sub(s.theme, "static"); err == nil {
		g.StaticFS("/static", static)
	}
	g.Static("/", s.cfg.Build.StaticDir)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Rebuild(ctx); err != nil {
		return err
	}

	// 启动文件监控
	if err := s.startWatch(ctx); err != nil {
		return err
	}

	// 支持 ctx 取消
	go func() {
		<-ctx.Done()
		_ = s.e.Shutdown(context.Background())
	}()

	log.Printf("[serve] listening on %s%s/", addr, s.cfg.Site.Path)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Rebuild reloads content from disk into the index and the in-memory
// snapshot, then tells connected pages to reload.
func (s *Server) Rebuild(ctx context.Context) error {
	posts, warns := ingest.Posts(s.cfg.PostsPath()).Scan()
	photos, pw := ingest.Photos(s.cfg.PhotosPath()).Scan()
	for _, w := range append(warns, pw...) {
		log.Printf("[warn] %s: %s", w.Path, w.Msg)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.idx.Rebuild(posts, photos); err != nil {
		return fmt.Errorf("index rebuild: %w", err)
	}

	s.mu.Lock()
	s.posts, s.photos = posts, photos
	s.mu.Unlock()

	log.Printf("[serve] loaded %d posts, %d photos", len(posts), len(photos))
	s.broadcastSSE("reload")
	return nil
}

func (s *Server) snapshot() ([]content.Article, []content.Photo) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts, s.photos
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		for _, dir := range []string{s.cfg.PostsPath(), s.cfg.PhotosPath()} {
			if _, statErr := os.Stat(dir); statErr != nil {
				log.Printf("[warn] not watching %s: %v", dir, statErr)
				continue
			}
			if e := w.Add(dir); e != nil {
				err = e
				return
			}
		}
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	log.Printf("[serve] watching for file changes ...")
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != ingest.Ext {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce.Reset(debounceDelay)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[warn] watcher error: %v", err)
		case <-debounce.C:
			ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s.Rebuild(ctx2); err != nil {
				log.Printf("[serve] rebuild error: %v", err)
			}
			cancel()
		}
	}
}

func (s *Server) handleSSE(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := make(chan string, 8)

	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()
	fmt.Fprintf(w, "data: %s\n\n", "hello")
	w.Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			w.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *Server) handleHome(c echo.Context) error {
	return s.renderHome(c, c.QueryParam("category"))
}

func (s *Server) handleCategory(c echo.Context) error {
	return s.renderHome(c, c.Param("name"))
}

func (s *Server) renderHome(c echo.Context, category string) error {
	page, err := build.HomePage(s.idx, s.cfg.Site, category, c.QueryParam("q"))
	if err != nil {
		return err
	}
	if category != "" && len(page.Posts) == 0 && page.Query == "" {
		return echo.ErrNotFound
	}
	out, err := s.tpl.RenderHome(c.Request().Context(), page)
	if err != nil {
		return fmt.Errorf("render home: %w", err)
	}
	return s.writeHTML(c, http.StatusOK, out)
}

func (s *Server) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	posts, _ := s.snapshot()

	var body []byte
	found := false
	for _, a := range posts {
		if a.Meta.Slug == slug {
			body, found = a.Body, true
			break
		}
	}
	if !found {
		return echo.ErrNotFound
	}
	md, err := s.md.Render(body)
	if err != nil {
		return fmt.Errorf("markdown render(%s): %w", slug, err)
	}
	page, _ := build.PostPage(s.cfg.Site, posts, map[string]render.MarkdownResult{slug: md}, slug)
	out, err := s.tpl.RenderPost(c.Request().Context(), page)
	if err != nil {
		return fmt.Errorf("render post(%s): %w", slug, err)
	}
	return s.writeHTML(c, http.StatusOK, out)
}

func (s *Server) handleAbout(c echo.Context) error {
	var html []byte
	if a, ok := ingest.Posts(s.cfg.Build.ContentDir).Get(build.AboutKey); ok {
		md, err := s.md.Render(a.Body)
		if err != nil {
			return fmt.Errorf("markdown render(%s): %w", build.AboutKey, err)
		}
		html = md.HTML
	}
	page, err := build.AboutPage(s.idx, s.cfg.Site, html)
	if err != nil {
		return err
	}
	out, err := s.tpl.RenderAbout(c.Request().Context(), page)
	if err != nil {
		return fmt.Errorf("render about: %w", err)
	}
	return s.writeHTML(c, http.StatusOK, out)
}

func (s *Server) handleGallery(c echo.Context) error {
	loc := c.Param("location")
	if loc == "" {
		loc = c.QueryParam("location")
	}
	page, err := build.GalleryPage(s.idx, s.cfg.Site, loc, nil)
	if err != nil {
		return err
	}
	out, err := s.tpl.RenderGallery(c.Request().Context(), page)
	if err != nil {
		return fmt.Errorf("render gallery: %w", err)
	}
	return s.writeHTML(c, http.StatusOK, out)
}

func (s *Server) handleFeed(c echo.Context) error {
	posts, _ := s.snapshot()
	r, err := feed.Build(s.cfg, posts, feed.WithBody(func(a content.Article) (string, error) {
		res, err := s.md.Render(a.Body)
		return string(res.HTML), err
	}), feed.At(time.Now()))
	if err != nil {
		return err
	}
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

type postList struct {
	Posts []content.ArticleMeta `json:"posts"`
	Total int                   `json:"total"`
}

type postDetail struct {
	content.ArticleMeta
	HTML string          `json:"html"`
	TOC  content.Outline `json:"toc"`
}

func (s *Server) apiPosts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	posts, total, err := s.idx.ListPosts(index.ListOptions{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []content.ArticleMeta{}
	}
	return c.JSON(http.StatusOK, postList{Posts: posts, Total: total})
}

// apiPost reads the post file fresh so edits show up before the watcher
// fires.
func (s *Server) apiPost(c echo.Context) error {
	a, ok := ingest.Posts(s.cfg.PostsPath()).Get(c.Param("slug"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	md, err := s.md.Render(a.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postDetail{ArticleMeta: a.Meta, HTML: string(md.HTML), TOC: md.Outline})
}

func (s *Server) apiPhotos(c echo.Context) error {
	photos, err := s.idx.ListPhotos(c.QueryParam("location"))
	if err != nil {
		return err
	}
	if photos == nil {
		photos = []content.Photo{}
	}
	return c.JSON(http.StatusOK, photos)
}

func (s *Server) apiCategories(c echo.Context) error {
	posts, _ := s.snapshot()
	return c.JSON(http.StatusOK, nonNil(ingest.Categories(posts)))
}

func (s *Server) apiLocations(c echo.Context) error {
	_, photos := s.snapshot()
	return c.JSON(http.StatusOK, nonNil(ingest.Locations(photos)))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &he):
		code = he.Code
	case errors.Is(err, domainerr.ErrNotFound):
		code = http.StatusNotFound
	}
	if code == http.StatusNotFound && !s.isAPI(c) {
		out, rerr := s.tpl.RenderNotFound(c.Request().Context(), render.NotFoundPage{
			Site:  s.cfg.Site,
			Path:  c.Request().URL.Path,
			Title: "404",
		})
		if rerr == nil {
			_ = s.writeHTML(c, http.StatusNotFound, out)
			return
		}
	}
	if code >= 500 {
		log.Printf("[serve] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	s.e.DefaultHTTPErrorHandler(err, c)
}

func (s *Server) isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, s.cfg.Site.Path+"/api/")
}

var reloadScript = []byte(`<script>new EventSource("%s/dev/events").onmessage=function(e){if(e.data==="reload")location.reload()}</script></body>`)

// writeHTML adds the live-reload hook before </body>.
func (s *Server) writeHTML(c echo.Context, code int, page []byte) error {
	hook := []byte(fmt.Sprintf(string(reloadScript), s.cfg.Site.Path))
	page = bytes.Replace(page, []byte("</body>"), hook, 1)
	return c.HTMLBlob(code, page)
}
