package config

import (
	domainerr "folio/internal/domain/errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Build BuildConfig `yaml:"build"`
	Feed  FeedConfig  `yaml:"feed"`
	Serve ServeConfig `yaml:"serve"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
	// URL and Path build absolute links in the feed, e.g.
	// https://example.github.io + /blog.
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

type BuildConfig struct {
	ContentDir string    `yaml:"content_dir"`
	PostsDir   string    `yaml:"posts_dir"`
	PhotosDir  string    `yaml:"photos_dir"`
	PublicDir  string    `yaml:"public_dir"`
	StaticDir  string    `yaml:"static_dir"`
	ThemeDir   string    `yaml:"theme_dir"`
	Theme      string    `yaml:"theme"`
	IndexPath  string    `yaml:"index_path"`
	Thumbnails bool      `yaml:"thumbnails"`
	Now        time.Time `yaml:"-"`
}

type FeedConfig struct {
	File      string `yaml:"file"`
	TTL       int    `yaml:"ttl"`
	Generator string `yaml:"generator"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Folio",
			Language: "zh-CN",
			URL:      "https://rostreet.github.io",
			Path:     "/blog",
		},
		Build: BuildConfig{
			ContentDir: "content",
			PostsDir:   "posts",
			PhotosDir:  "photos",
			PublicDir:  "public",
			StaticDir:  "static",
			ThemeDir:   "themes",
			Theme:      "default",
			IndexPath:  ".folio/index.db",
			Thumbnails: true,
			Now:        time.Now(),
		},
		Feed: FeedConfig{
			File:      "rss.xml",
			TTL:       60,
			Generator: "folio",
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
	}
}

// PostsPath is the directory holding <slug>.md article files.
func (c Config) PostsPath() string {
	return filepath.Join(c.Build.ContentDir, c.Build.PostsDir)
}

func (c Config) PhotosPath() string {
	return filepath.Join(c.Build.ContentDir, c.Build.PhotosDir)
}

// BaseURL joins the site URL and path prefix without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.Site.URL), "/") + strings.TrimSpace(c.Site.Path)
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if strings.TrimSpace(c.Site.URL) == "" {
		ve.Add("site.url", "must not be empty")
	} else if !isValidAbsURL(c.Site.URL) {
		ve.Add("site.url", "must be a valid absolute URL")
	}
	if p := strings.TrimSpace(c.Site.Path); p != "" {
		if !strings.HasPrefix(p, "/") {
			ve.Add("site.path", "must start with '/'")
		}
		if strings.HasSuffix(p, "/") {
			ve.Add("site.path", "must not end with '/'")
		}
	}

	for field, v := range map[string]string{
		"build.content_dir": c.Build.ContentDir,
		"build.posts_dir":   c.Build.PostsDir,
		"build.photos_dir":  c.Build.PhotosDir,
		"build.public_dir":  c.Build.PublicDir,
		"build.theme_dir":   c.Build.ThemeDir,
		"build.theme":       c.Build.Theme,
		"build.index_path":  c.Build.IndexPath,
		"feed.file":         c.Feed.File,
	} {
		if strings.TrimSpace(v) == "" {
			ve.Add(field, "must not be empty")
		}
	}
	if strings.ContainsAny(c.Feed.File, `/\`) {
		ve.Add("feed.file", "must be a file name, not a path")
	}
	if c.Feed.TTL < 0 {
		ve.Addf("feed.ttl", "must be >= 0, got %d", c.Feed.TTL)
	}

	return ve.Err()
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Load reads the yaml file at path over Default(), then applies overrides
// from env (may be nil). A missing file is not an error: defaults apply.
func Load(path string, env *viper.Viper) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// 文件中写到的字段覆盖默认值，其他字段保留 Default
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err):
	default:
		return cfg, err
	}

	if env != nil {
		Overlay(&cfg, env)
	}
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
