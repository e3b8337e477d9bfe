package index

import (
	"encoding/json"
	"strings"

	"folio/internal/domain/content"
	domainerr "folio/internal/domain/errors"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/text/cases"
)

// ListOptions filters posts. Query matches title or excerpt, ignoring
// case. Size <= 0 returns every match.
type ListOptions struct {
	Category string
	Query    string
	Page     int
	Size     int
}

type Stat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func (s *Store) GetPost(slug string) (content.ArticleMeta, error) {
	var m content.ArticleMeta
	err := s.get(bPosts, "post", slug, &m)
	return m, err
}

func (s *Store) GetPhoto(id string) (content.Photo, error) {
	var p content.Photo
	err := s.get(bPhotos, "photo", id, &p)
	return p, err
}

func (s *Store) get(bucket []byte, kind, key string, v any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domainerr.NotFoundError{Kind: kind, Key: key}
	}
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return domainerr.NotFoundError{Kind: kind, Key: key}
		}
		data := b.Get([]byte(key))
		if data == nil {
			return domainerr.NotFoundError{Kind: kind, Key: key}
		}
		return json.Unmarshal(data, v)
	})
}

// ListPosts returns matching posts newest first and the number of matches
// before paging.
func (s *Store) ListPosts(opt ListOptions) ([]content.ArticleMeta, int, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(opt.Query))

	var out []content.ArticleMeta
	total := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := dateIndex(tx, bIdxPosts, bIdxCat, opt.Category)
		metaB := tx.Bucket(bPosts)
		if idx == nil || metaB == nil {
			return nil
		}

		skip := (opt.Page - 1) * opt.Size
		cur := idx.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			v := metaB.Get([]byte(keyFromDateKey(k)))
			if v == nil {
				continue
			}
			var m content.ArticleMeta
			if err := json.Unmarshal(v, &m); err != nil {
				continue
			}
			if query != "" &&
				!strings.Contains(fold.String(m.Title), query) &&
				!strings.Contains(fold.String(m.Excerpt), query) {
				continue
			}
			total++
			if opt.Size <= 0 {
				out = append(out, m)
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			if len(out) < opt.Size {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, total, err
}

// ListPhotos returns photos newest first, only those taken at location
// when it is set.
func (s *Store) ListPhotos(location string) ([]content.Photo, error) {
	var out []content.Photo
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := dateIndex(tx, bIdxPhotos, bIdxLoc, location)
		photosB := tx.Bucket(bPhotos)
		if idx == nil || photosB == nil {
			return nil
		}
		return idx.ForEach(func(k, _ []byte) error {
			v := photosB.Get([]byte(keyFromDateKey(k)))
			if v == nil {
				return nil
			}
			var p content.Photo
			if err := json.Unmarshal(v, &p); err != nil {
				return nil
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

// dateIndex picks the group sub-bucket when group is set, else the full
// index. Unknown groups give nil.
func dateIndex(tx *bolt.Tx, all, groups []byte, group string) *bolt.Bucket {
	group = strings.TrimSpace(group)
	if group == "" {
		return tx.Bucket(all)
	}
	parent := tx.Bucket(groups)
	if parent == nil {
		return nil
	}
	return parent.Bucket([]byte(group))
}

func (s *Store) Categories() ([]Stat, error) {
	return s.groupStats(bIdxCat)
}

func (s *Store) Locations() ([]Stat, error) {
	return s.groupStats(bIdxLoc)
}

func (s *Store) groupStats(name []byte) ([]Stat, error) {
	var out []Stat
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(name)
		if parent == nil {
			return nil
		}
		return parent.ForEachBucket(func(k []byte) error {
			out = append(out, Stat{Name: string(k), Count: parent.Bucket(k).Stats().KeyN})
			return nil
		})
	})
	return out, err
}

// RenderHash returns the fingerprint stored for route, "" when none.
func (s *Store) RenderHash(route string) (string, error) {
	var hash string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bRender)
		if b == nil {
			return nil
		}
		hash = string(b.Get([]byte(route)))
		return nil
	})
	return hash, err
}
