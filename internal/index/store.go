package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store is the derived content index. It is rebuilt from the content
// directory on every build and serve reload; only render fingerprints carry
// over between runs.
type Store struct {
	db   *bolt.DB
	path string
}

type OpenOptions struct {
	Path string // e.g. ".folio/index.db"
	// Timeout bounds the wait for the file lock. Default 1s.
	Timeout time.Duration
}

// ErrLocked means another process (usually a running serve) holds the
// index file.
var ErrLocked = errors.New("index is locked by another process")

func Open(opt OpenOptions) (*Store, error) {
	path := strings.TrimSpace(opt.Path)
	if path == "" {
		return nil, errors.New("index: missing path")
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bRender)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

// Counts reports how many posts and photos the last Rebuild stored.
func (s *Store) Counts() (posts, photos int, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bPosts); b != nil {
			posts = b.Stats().KeyN
		}
		if b := tx.Bucket(bPhotos); b != nil {
			photos = b.Stats().KeyN
		}
		return nil
	})
	return posts, photos, err
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
