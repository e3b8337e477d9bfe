package content

import "strings"

// DefaultPhotoHeight is the gallery tile height in pixels used when a photo
// does not set one.
const DefaultPhotoHeight = 300

type Photo struct {
	ID          string `json:"id"`
	Src         string `json:"src"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Date        Date   `json:"date"`
	Description string `json:"description"`
	Camera      string `json:"camera"`
	Lens        string `json:"lens,omitempty"`
	Height      int    `json:"height"`
}

func (p Photo) Key() string    { return p.ID }
func (p Photo) SortDate() Date { return p.Date }

func (p *Photo) Normalize() {
	p.Src = strings.TrimSpace(p.Src)
	p.Title = strings.TrimSpace(p.Title)
	p.Location = strings.TrimSpace(p.Location)
	p.Camera = strings.TrimSpace(p.Camera)
	p.Lens = strings.TrimSpace(p.Lens)
	p.Date = NormalizeDate(p.Date)
	if p.Height <= 0 {
		p.Height = DefaultPhotoHeight
	}
}
