// Package gallery writes the downscaled images shown in the photo grid.
package gallery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"folio/internal/domain/content"
	"folio/internal/ingest"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

const (
	ThumbWidth  = 480
	ThumbDir    = "thumbs"
	jpegQuality = 80
)

// Thumbnailer resolves local photo sources under StaticDir and writes
// JPEG thumbnails to PublicDir/thumbs/<id>.jpg.
type Thumbnailer struct {
	StaticDir string
	PublicDir string
}

// ThumbPath is the public-relative path of a photo's thumbnail.
func ThumbPath(id string) string {
	return ThumbDir + "/" + id + ".jpg"
}

// IsRemote reports whether src points off-site.
func IsRemote(src string) bool {
	s := strings.ToLower(src)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "data:")
}

// Generate writes thumbnails for every local photo and returns the ids
// that have one. Failures are warnings; remote sources are skipped.
func (t Thumbnailer) Generate(ctx context.Context, photos []content.Photo) (map[string]bool, []ingest.Warning) {
	ok := make([]bool, len(photos))
	errs := make([]error, len(photos))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range photos {
		i, p := i, p
		if p.ID == "" || p.Src == "" || IsRemote(p.Src) {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs[i] = t.one(p)
			ok[i] = errs[i] == nil
			return nil
		})
	}
	_ = g.Wait()

	done := make(map[string]bool)
	var warns []ingest.Warning
	for i, p := range photos {
		switch {
		case errs[i] != nil:
			warns = append(warns, ingest.Warning{Path: p.Src, Msg: "thumbnail: " + errs[i].Error()})
		case ok[i]:
			done[p.ID] = true
		}
	}
	return done, warns
}

func (t Thumbnailer) one(p content.Photo) error {
	src := filepath.Join(t.StaticDir, filepath.FromSlash(strings.TrimPrefix(p.Src, "/")))
	dst := filepath.Join(t.PublicDir, filepath.FromSlash(ThumbPath(p.ID)))

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if dstInfo, err := os.Stat(dst); err == nil && !dstInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := Thumbnail(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir thumbs: %w", err)
	}
	return os.WriteFile(dst, data, 0o644)
}

// Thumbnail decodes an image and encodes it as JPEG no wider than
// ThumbWidth.
func Thumbnail(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > ThumbWidth {
		newH := max(1, h*ThumbWidth/w)
		dst := image.NewRGBA(image.Rect(0, 0, ThumbWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
