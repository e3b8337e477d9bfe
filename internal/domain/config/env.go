package config

import (
	"strings"

	"github.com/spf13/viper"
)

// NewEnv returns a viper instance reading FOLIO_* variables
// (FOLIO_BUILD_PUBLIC_DIR -> build.public_dir) plus the SITE_URL and
// SITE_PATH variables used by the feed script in CI.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("site.url", "SITE_URL", "FOLIO_SITE_URL")
	_ = v.BindEnv("site.path", "SITE_PATH", "FOLIO_SITE_PATH")
	return v
}

// Overlay copies every key set in v (env var or changed flag) onto cfg.
func Overlay(cfg *Config, v *viper.Viper) {
	strs := map[string]*string{
		"site.title":        &cfg.Site.Title,
		"site.description":  &cfg.Site.Description,
		"site.author":       &cfg.Site.Author,
		"site.language":     &cfg.Site.Language,
		"site.url":          &cfg.Site.URL,
		"site.path":         &cfg.Site.Path,
		"build.content_dir": &cfg.Build.ContentDir,
		"build.public_dir":  &cfg.Build.PublicDir,
		"build.static_dir":  &cfg.Build.StaticDir,
		"build.theme_dir":   &cfg.Build.ThemeDir,
		"build.theme":       &cfg.Build.Theme,
		"build.index_path":  &cfg.Build.IndexPath,
		"feed.file":         &cfg.Feed.File,
		"serve.addr":        &cfg.Serve.Addr,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	if v.IsSet("feed.ttl") {
		cfg.Feed.TTL = v.GetInt("feed.ttl")
	}
	if v.IsSet("build.thumbnails") {
		cfg.Build.Thumbnails = v.GetBool("build.thumbnails")
	}
}
