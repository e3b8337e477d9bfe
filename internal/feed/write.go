package feed

import (
	"fmt"
	"os"
	"path/filepath"

	"folio/internal/domain/config"
	"folio/internal/domain/content"
)

// Write stores the feed at path, creating parent directories. Every
// failure is returned; a build without its feed is broken.
func Write(path string, r *RSS) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	return nil
}

// Generate builds the feed for articles and writes it to
// publicDir/<feed.file>. It returns the path written.
func Generate(cfg config.Config, articles []content.Article, publicDir string, opts ...Option) (string, error) {
	r, err := Build(cfg, articles, opts...)
	if err != nil {
		return "", err
	}
	path := filepath.Join(publicDir, cfg.Feed.File)
	if err := Write(path, r); err != nil {
		return "", err
	}
	return path, nil
}
