package ingest

import (
	"bytes"
	"fmt"

	"folio/internal/domain/content"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// yamlFormat decodes "---" blocks with yaml.v3 so content.Date sees the
// node tag and can tell timestamps from quoted strings.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

type postFrontMatter struct {
	Title    string       `yaml:"title"`
	Date     content.Date `yaml:"date"`
	ReadTime string       `yaml:"readTime"`
	Category string       `yaml:"category"`
	Author   string       `yaml:"author"`
	Excerpt  string       `yaml:"excerpt"`
}

type photoFrontMatter struct {
	Src         string       `yaml:"src"`
	Title       string       `yaml:"title"`
	Location    string       `yaml:"location"`
	Date        content.Date `yaml:"date"`
	Description string       `yaml:"description"`
	Camera      string       `yaml:"camera"`
	Lens        string       `yaml:"lens"`
	Height      int          `yaml:"height"`
}

func parseFrontMatter(raw []byte, v any) ([]byte, error) {
	// normalize CRLF line endings
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	body, err := frontmatter.Parse(bytes.NewReader(raw), v, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("front matter: %w", err)
	}
	return body, nil
}

// DecodePost builds an article from a post file. The slug is the file key.
func DecodePost(key string, raw []byte) (content.Article, error) {
	var fm postFrontMatter
	body, err := parseFrontMatter(raw, &fm)
	if err != nil {
		return content.Article{}, err
	}
	meta := content.ArticleMeta{
		Slug:     key,
		Title:    fm.Title,
		Date:     fm.Date,
		ReadTime: fm.ReadTime,
		Category: fm.Category,
		Author:   fm.Author,
		Excerpt:  fm.Excerpt,
	}
	meta.Normalize()
	return content.Article{Meta: meta, Body: bytes.TrimLeft(body, "\n")}, nil
}

// DecodePhoto builds a photo from its metadata file. The body is ignored.
func DecodePhoto(key string, raw []byte) (content.Photo, error) {
	var fm photoFrontMatter
	if _, err := parseFrontMatter(raw, &fm); err != nil {
		return content.Photo{}, err
	}
	p := content.Photo{
		ID:          key,
		Src:         fm.Src,
		Title:       fm.Title,
		Location:    fm.Location,
		Date:        fm.Date,
		Description: fm.Description,
		Camera:      fm.Camera,
		Lens:        fm.Lens,
		Height:      fm.Height,
	}
	p.Normalize()
	return p, nil
}
