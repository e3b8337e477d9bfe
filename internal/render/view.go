package render

import (
	"html/template"

	"folio/internal/domain/config"
	"folio/internal/domain/content"
)

type PostPage struct {
	Site  config.SiteConfig
	Meta  content.ArticleMeta
	HTML  template.HTML
	TOC   content.Outline
	Prev  *content.ArticleMeta
	Next  *content.ArticleMeta
	Title string
}

// HomePage lists posts. Category and Query echo the active filter so the
// template can mark the selected chip and prefill the search box.
type HomePage struct {
	Site       config.SiteConfig
	Posts      []content.ArticleMeta
	Categories []string
	Category   string
	Query      string
	Total      int
	Title      string
}

type GalleryPage struct {
	Site      config.SiteConfig
	Photos    []GalleryItem
	Locations []string
	Location  string
	Title     string
}

// GalleryItem is a photo plus the thumbnail to show in the grid. Thumb
// falls back to the full image when no thumbnail was generated.
type GalleryItem struct {
	content.Photo
	Thumb string
}

// AboutPage is the author page. HTML is the rendered about.md; without one
// the template falls back to the site description.
type AboutPage struct {
	Site       config.SiteConfig
	HTML       template.HTML
	Posts      int
	Photos     int
	Categories []string
	Title      string
}

type NotFoundPage struct {
	Site  config.SiteConfig
	Path  string
	Title string
}
