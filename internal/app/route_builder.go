package app

import (
	"folio/internal/domain/content"
	"folio/internal/domain/site"
	"folio/internal/index"
)

type RouteBuilder struct {
	Index *index.Store
}

func (rb *RouteBuilder) BuildPostRoutes(articles []content.ArticleMeta) []site.Route {
	routes := make([]site.Route, 0, len(articles))
	for _, m := range articles {
		routes = append(routes, site.Route{Kind: site.RoutePost, Key: m.Slug})
	}
	return routes
}

func (rb *RouteBuilder) BuildCategoryRoutes() ([]site.Route, error) {
	stats, err := rb.Index.Categories()
	if err != nil {
		return nil, err
	}
	return groupRoutes(site.RouteCategory, stats), nil
}

func (rb *RouteBuilder) BuildLocationRoutes() ([]site.Route, error) {
	stats, err := rb.Index.Locations()
	if err != nil {
		return nil, err
	}
	return groupRoutes(site.RouteLocation, stats), nil
}

// BuildAll lists every page of the site: index, about, posts, categories,
// photo pages and 404. The feed is written separately.
func (rb *RouteBuilder) BuildAll() ([]site.Route, error) {
	posts, _, err := rb.Index.ListPosts(index.ListOptions{})
	if err != nil {
		return nil, err
	}
	cats, err := rb.BuildCategoryRoutes()
	if err != nil {
		return nil, err
	}
	locs, err := rb.BuildLocationRoutes()
	if err != nil {
		return nil, err
	}

	routes := []site.Route{{Kind: site.RouteIndex}, {Kind: site.RouteAbout}}
	routes = append(routes, rb.BuildPostRoutes(posts)...)
	routes = append(routes, cats...)
	routes = append(routes, site.Route{Kind: site.RoutePhotos})
	routes = append(routes, locs...)
	routes = append(routes, site.Route{Kind: site.RouteNotFound})
	return routes, nil
}

func groupRoutes(kind site.RouteKind, stats []index.Stat) []site.Route {
	routes := make([]site.Route, 0, len(stats))
	for _, s := range stats {
		if s.Count == 0 {
			continue
		}
		routes = append(routes, site.Route{Kind: kind, Key: s.Name})
	}
	return routes
}
