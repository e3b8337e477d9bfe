package site

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RouteAbout    RouteKind = "about"
	RoutePost     RouteKind = "post"
	RouteCategory RouteKind = "category"
	RoutePhotos   RouteKind = "photos"
	RouteLocation RouteKind = "location"
	RouteRSS      RouteKind = "rss"
	RouteNotFound RouteKind = "404"
)

type Route struct {
	Kind RouteKind
	Key  string
}

// Segment makes a post slug, category or location safe to use as one path
// segment: separators and dot runs become '-'.
func Segment(key string) string {
	key = strings.TrimSpace(key)
	key = strings.NewReplacer("/", "-", `\`, "-", "..", "-").Replace(key)
	if key == "" || key == "." {
		return "untitled"
	}
	return key
}

// URLPath is the public path of the route below the site path prefix,
// always with a trailing slash for directory pages.
func (r Route) URLPath() string {
	switch r.Kind {
	case RoutePost:
		return "/posts/" + url.PathEscape(Segment(r.Key)) + "/"
	case RouteCategory:
		return "/categories/" + url.PathEscape(Segment(r.Key)) + "/"
	case RouteAbout:
		return "/about/"
	case RoutePhotos:
		return "/photos/"
	case RouteLocation:
		return "/photos/" + url.PathEscape(Segment(r.Key)) + "/"
	case RouteRSS:
		return "/rss.xml"
	case RouteNotFound:
		return "/404.html"
	}
	return "/"
}

// OutPath is the slash-separated file the route is written to, relative to
// the public directory.
func (r Route) OutPath() string {
	switch r.Kind {
	case RouteRSS:
		return "rss.xml"
	case RouteNotFound:
		return "404.html"
	}
	p := r.URLPath()
	if r.Key != "" {
		// keep the unescaped key on disk; the server unescapes request paths
		p = strings.TrimSuffix(p, url.PathEscape(Segment(r.Key))+"/") + Segment(r.Key) + "/"
	}
	return path.Join(strings.TrimPrefix(p, "/"), "index.html")
}

func (r Route) String() string {
	if r.Key == "" {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s key=%s", r.Kind, r.Key)
}
