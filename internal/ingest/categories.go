package ingest

import "folio/internal/domain/content"

// Categories returns the distinct non-empty categories in first-seen order.
func Categories(posts []content.Article) []string {
	return distinct(posts, func(a content.Article) string { return a.Meta.Category })
}

func Locations(photos []content.Photo) []string {
	return distinct(photos, func(p content.Photo) string { return p.Location })
}

func distinct[T any](items []T, field func(T) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range items {
		v := field(it)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
