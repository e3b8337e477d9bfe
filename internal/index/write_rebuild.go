package index

import (
	"encoding/json"
	"strings"

	"folio/internal/domain/content"

	bolt "go.etcd.io/bbolt"
)

// Rebuild replaces every content bucket in one transaction. Render
// fingerprints survive so unchanged pages are not rewritten.
func (s *Store) Rebuild(posts []content.Article, photos []content.Photo) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range rebuilt {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}
		if _, err := tx.CreateBucketIfNotExists(bRender); err != nil {
			return err
		}

		postsB, err := tx.CreateBucket(bPosts)
		if err != nil {
			return err
		}
		idxPostsB, _ := tx.CreateBucket(bIdxPosts)
		idxCatB, _ := tx.CreateBucket(bIdxCat)

		for _, a := range posts {
			m := a.Meta
			if strings.TrimSpace(m.Slug) == "" {
				continue
			}
			if err := putJSON(postsB, m.Slug, m); err != nil {
				return err
			}
			k := makeDateKey(m.Date, m.Slug)
			if err := idxPostsB.Put(k, []byte{1}); err != nil {
				return err
			}
			if err := putGroup(idxCatB, m.Category, k); err != nil {
				return err
			}
		}

		photosB, err := tx.CreateBucket(bPhotos)
		if err != nil {
			return err
		}
		idxPhotosB, _ := tx.CreateBucket(bIdxPhotos)
		idxLocB, _ := tx.CreateBucket(bIdxLoc)

		for _, p := range photos {
			if strings.TrimSpace(p.ID) == "" {
				continue
			}
			if err := putJSON(photosB, p.ID, p); err != nil {
				return err
			}
			k := makeDateKey(p.Date, p.ID)
			if err := idxPhotosB.Put(k, []byte{1}); err != nil {
				return err
			}
			if err := putGroup(idxLocB, p.Location, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func putJSON(b *bolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func putGroup(parent *bolt.Bucket, name string, k []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	sb, err := parent.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return err
	}
	return sb.Put(k, []byte{1})
}

// PutRenderHash records the fingerprint a route was last written with.
func (s *Store) PutRenderHash(route, hash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bRender)
		if err != nil {
			return err
		}
		return b.Put([]byte(route), []byte(hash))
	})
}
