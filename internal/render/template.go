package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"folio/internal/domain/site"
	"folio/internal/heading"
)

//go:embed all:theme
var embedded embed.FS

// ThemeFS returns themeDir/themeName when it exists on disk and the
// built-in theme otherwise. The result has templates/ and static/ at its
// root.
func ThemeFS(themeDir, themeName string) fs.FS {
	dir := filepath.Join(themeDir, themeName)
	if st, err := os.Stat(dir); err == nil && st.IsDir() {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embedded, "theme")
	if err != nil {
		panic(err)
	}
	return sub
}

type TemplateRenderer struct {
	tpl *template.Template
}

func NewTemplateRenderer(themeDir, themeName string) (*TemplateRenderer, error) {
	return NewTemplateRendererFS(ThemeFS(themeDir, themeName))
}

func NewTemplateRendererFS(theme fs.FS) (*TemplateRenderer, error) {
	if err := CheckThemeTemplates(theme); err != nil {
		return nil, err
	}
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(theme, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"nowYear": func() int {
			return time.Now().Year()
		},
		"postURL": PostURL,
		"categoryURL": func(prefix, name string) string {
			return prefix + site.Route{Kind: site.RouteCategory, Key: name}.URLPath()
		},
		"locationURL": func(prefix, name string) string {
			return prefix + site.Route{Kind: site.RouteLocation, Key: name}.URLPath()
		},
		"lower": strings.ToLower,
		"headerOffset": func() int {
			return heading.ScrollMargin
		},
	}
}

// PostURL is the site-relative link of a post under the path prefix.
func PostURL(prefix, slug string) string {
	return prefix + site.Route{Kind: site.RoutePost, Key: slug}.URLPath()
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec("post.tmpl", page)
}

func (r *TemplateRenderer) RenderGallery(ctx context.Context, page GalleryPage) ([]byte, error) {
	return r.exec("gallery.tmpl", page)
}

func (r *TemplateRenderer) RenderAbout(ctx context.Context, page AboutPage) ([]byte, error) {
	return r.exec("about.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckThemeTemplates(theme fs.FS) error {
	required := []string{
		"layout.tmpl",
		"home.tmpl",
		"post.tmpl",
		"gallery.tmpl",
		"about.tmpl",
		"404.tmpl",
	}
	for _, name := range required {
		if _, err := fs.Stat(theme, "templates/"+name); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}
