package toc

import (
	"math"
	"sync"
)

// Viewport is an in-process browser window over a Document. It scrolls
// instantly and queues intersection changes until Flush, the way a browser
// delivers them on its next frame.
type Viewport struct {
	doc    Document
	height float64

	mu        sync.Mutex
	scrollY   float64
	observers []*viewportObserver
}

func NewViewport(doc Document, height float64) *Viewport {
	return &Viewport{doc: doc, height: height}
}

type viewportObserver struct {
	v        *Viewport
	margin   RootMargin
	callback func([]Entry)

	// guarded by v.mu
	targets []string
	last    map[string]bool
	pending []Entry
	closed  bool
}

func (v *Viewport) NewObserver(margin RootMargin, callback func([]Entry)) Observer {
	o := &viewportObserver{v: v, margin: margin, callback: callback, last: make(map[string]bool)}
	v.mu.Lock()
	v.observers = append(v.observers, o)
	v.mu.Unlock()
	return o
}

// Observe starts watching id. Like a browser, the first delivery reports
// the element's current state whether or not it intersects.
func (o *viewportObserver) Observe(id string) {
	o.v.mu.Lock()
	defer o.v.mu.Unlock()
	if o.closed {
		return
	}
	if _, seen := o.last[id]; seen {
		return
	}
	o.targets = append(o.targets, id)
	in := o.v.intersectsLocked(o.margin, id)
	o.last[id] = in
	o.pending = append(o.pending, Entry{ID: id, Intersecting: in})
}

func (o *viewportObserver) Disconnect() {
	o.v.mu.Lock()
	defer o.v.mu.Unlock()
	o.closed = true
	o.pending = nil
	o.targets = nil
}

// ScrollTo jumps to y, clamped to the scrollable range.
func (v *Viewport) ScrollTo(y float64, smooth bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollY = math.Max(0, y)
	if p, ok := v.doc.(interface{ Height() float64 }); ok {
		v.scrollY = math.Min(v.scrollY, math.Max(0, p.Height()-v.height))
	}
	for _, o := range v.observers {
		if o.closed {
			continue
		}
		for _, id := range o.targets {
			in := v.intersectsLocked(o.margin, id)
			if in != o.last[id] {
				o.last[id] = in
				o.pending = append(o.pending, Entry{ID: id, Intersecting: in})
			}
		}
	}
}

func (v *Viewport) ScrollY() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollY
}

// Flush delivers queued entries, one batch per observer.
func (v *Viewport) Flush() {
	v.mu.Lock()
	type delivery struct {
		cb      func([]Entry)
		entries []Entry
	}
	var out []delivery
	live := v.observers[:0]
	for _, o := range v.observers {
		if len(o.pending) > 0 {
			out = append(out, delivery{cb: o.callback, entries: o.pending})
			o.pending = nil
		}
		if !o.closed {
			live = append(live, o)
		}
	}
	v.observers = live
	v.mu.Unlock()

	for _, d := range out {
		d.cb(d.entries)
	}
}

// regionLocked returns the observed band [top, bottom) in document
// coordinates.
func (v *Viewport) regionLocked(m RootMargin) (float64, float64) {
	top := v.scrollY + m.Top
	bottom := v.scrollY + v.height*(1-m.BottomRatio)
	return top, bottom
}

func (v *Viewport) intersectsLocked(m RootMargin, id string) bool {
	box, ok := v.doc.Lookup(id)
	if !ok {
		return false
	}
	top, bottom := v.regionLocked(m)
	return box.Top < bottom && box.Bottom() > top
}
