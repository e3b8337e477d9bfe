// Package ingest reads front matter annotated content files. A Collection
// maps one directory of <key>.md files to typed records.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"folio/internal/domain/content"
	domainerr "folio/internal/domain/errors"

	"golang.org/x/sync/errgroup"
)

const Ext = ".md"

// Record is what a collection hands out: keyed and dated.
type Record interface {
	Key() string
	SortDate() content.Date
}

// Decoder turns the raw bytes of <key>.md into a record.
type Decoder[T Record] func(key string, raw []byte) (T, error)

type Warning struct {
	Path string
	Msg  string
}

type Collection[T Record] struct {
	Kind   string
	Dir    string
	decode Decoder[T]
}

func NewCollection[T Record](kind, dir string, decode Decoder[T]) *Collection[T] {
	return &Collection[T]{Kind: kind, Dir: dir, decode: decode}
}

func Posts(dir string) *Collection[content.Article] {
	return NewCollection("post", dir, DecodePost)
}

func Photos(dir string) *Collection[content.Photo] {
	return NewCollection("photo", dir, DecodePhoto)
}

// Path returns the file backing key.
func (c *Collection[T]) Path(key string) string {
	return filepath.Join(c.Dir, key+Ext)
}

// Get returns the record for key, or false when the file is missing,
// unreadable or malformed. It never fails.
func (c *Collection[T]) Get(key string) (T, bool) {
	rec, err := c.Load(key)
	return rec, err == nil
}

// Load is Get with the reason for absence. Missing files match
// errors.ErrNotFound.
func (c *Collection[T]) Load(key string) (T, error) {
	var zero T
	if !validKey(key) {
		return zero, domainerr.NotFoundError{Kind: c.Kind, Key: key}
	}
	raw, err := os.ReadFile(c.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, domainerr.NotFoundError{Kind: c.Kind, Key: key}
		}
		return zero, fmt.Errorf("read %s: %w", c.Path(key), err)
	}
	rec, err := c.decode(key, raw)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", c.Path(key), err)
	}
	return rec, nil
}

// Keys lists every key in the directory, sorted. A missing directory
// yields no keys.
func (c *Collection[T]) Keys() []string {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[warn] list %s: %v", c.Dir, err)
		}
		return nil
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, Ext) {
			continue
		}
		if key := strings.TrimSuffix(name, Ext); key != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// All loads every key and returns the present records, newest first. Equal
// dates keep key order, so the result is the same on every call.
func (c *Collection[T]) All() []T {
	recs, _ := c.Scan()
	return recs
}

// Scan is All plus a warning for every file that could not be loaded.
func (c *Collection[T]) Scan() ([]T, []Warning) {
	keys := c.Keys()
	recs := make([]T, len(keys))
	errs := make([]error, len(keys))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			recs[i], errs[i] = c.Load(key)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]T, 0, len(keys))
	var warns []Warning
	for i, err := range errs {
		if err != nil {
			warns = append(warns, Warning{Path: c.Path(keys[i]), Msg: err.Error()})
			continue
		}
		out = append(out, recs[i])
	}
	SortByDate(out)
	return out, warns
}

// SortByDate orders records newest first, stable for equal dates.
func SortByDate[T Record](recs []T) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].SortDate().Compare(recs[j].SortDate()) > 0
	})
}

func validKey(key string) bool {
	if key == "" || key == "." || strings.Contains(key, "..") {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}
