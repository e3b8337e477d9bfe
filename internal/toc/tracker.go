// Package toc keeps a table of contents in sync with the reading position:
// the heading in the upper part of the viewport is the active entry, and
// clicking an entry scrolls its heading just below the fixed nav bar.
package toc

import (
	"math"
	"sync"
	"time"

	"folio/internal/domain/content"
	"folio/internal/heading"
)

const (
	DefaultRegisterDelay = 100 * time.Millisecond
	DefaultBottomRatio   = 0.66
)

type Options struct {
	// RegisterDelay defers observation until the headings are rendered.
	RegisterDelay time.Duration
	// HeaderOffset is the fixed nav bar height in pixels.
	HeaderOffset float64
	BottomRatio  float64
	// OnChange receives a snapshot after every state change.
	OnChange func(State)
}

func (o Options) withDefaults() Options {
	if o.RegisterDelay <= 0 {
		o.RegisterDelay = DefaultRegisterDelay
	}
	if o.HeaderOffset <= 0 {
		o.HeaderOffset = heading.ScrollMargin
	}
	if o.BottomRatio <= 0 || o.BottomRatio >= 1 {
		o.BottomRatio = DefaultBottomRatio
	}
	return o
}

type State struct {
	Outline  content.Outline
	ActiveID string
}

type Tracker struct {
	doc    Document
	obs    ObserverFactory
	scroll Scroller
	sched  Scheduler
	opts   Options

	mu       sync.Mutex
	gen      uint64
	state    State
	observer Observer
	cancel   func()
}

func New(doc Document, obs ObserverFactory, scroll Scroller, sched Scheduler, opts Options) *Tracker {
	return &Tracker{
		doc:    doc,
		obs:    obs,
		scroll: scroll,
		sched:  sched,
		opts:   opts.withDefaults(),
	}
}

// Mount shows the table of contents for body, replacing whatever was
// mounted before. Headings are observed after RegisterDelay.
func (t *Tracker) Mount(body []byte) {
	outline := heading.Extract(body)

	t.mu.Lock()
	t.teardownLocked()
	t.gen++
	gen := t.gen
	t.state = State{Outline: outline}
	if len(outline) == 0 {
		snap := t.snapshotLocked()
		t.mu.Unlock()
		t.notify(snap)
		return
	}
	margin := RootMargin{Top: t.opts.HeaderOffset, BottomRatio: t.opts.BottomRatio}
	t.observer = t.obs.NewObserver(margin, func(entries []Entry) {
		t.intersect(gen, entries)
	})
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(snap)

	cancel := t.sched.AfterFunc(t.opts.RegisterDelay, func() { t.register(gen) })

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen {
		cancel()
		return
	}
	t.cancel = cancel
}

// Unmount cancels pending registration, disconnects the observer and
// clears the state. Callbacks still in flight are ignored.
func (t *Tracker) Unmount() {
	t.mu.Lock()
	t.teardownLocked()
	t.gen++
	t.state = State{}
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.notify(snap)
}

func (t *Tracker) teardownLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.observer != nil {
		t.observer.Disconnect()
		t.observer = nil
	}
}

func (t *Tracker) register(gen uint64) {
	t.mu.Lock()
	if t.gen != gen || t.observer == nil {
		t.mu.Unlock()
		return
	}
	t.cancel = nil
	observer := t.observer
	var ids []string
	for _, h := range t.state.Outline {
		if _, ok := t.doc.Lookup(h.ID); ok {
			ids = append(ids, h.ID)
		}
	}
	t.mu.Unlock()

	for _, id := range ids {
		observer.Observe(id)
	}
}

func (t *Tracker) intersect(gen uint64, entries []Entry) {
	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return
	}
	prev := t.state.ActiveID
	for _, e := range entries {
		if e.Intersecting {
			t.state.ActiveID = e.ID
		}
	}
	changed := t.state.ActiveID != prev
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if changed {
		t.notify(snap)
	}
}

// Click handles a click on the entry for id: the default jump is prevented
// and the page smooth-scrolls so the heading sits below the nav bar. It
// reports whether id is a mounted entry with a heading on the page.
func (t *Tracker) Click(ev ClickEvent, id string) bool {
	if ev != nil {
		ev.PreventDefault()
	}
	t.mu.Lock()
	_, listed := t.state.Outline.Find(id)
	t.mu.Unlock()
	if !listed {
		return false
	}
	box, ok := t.doc.Lookup(id)
	if !ok {
		return false
	}
	t.scroll.ScrollTo(math.Max(0, box.Top-t.opts.HeaderOffset), true)
	return true
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Visible reports whether there is anything to show.
func (t *Tracker) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.state.Outline) > 0
}

func (t *Tracker) snapshotLocked() State {
	return State{
		Outline:  append(content.Outline(nil), t.state.Outline...),
		ActiveID: t.state.ActiveID,
	}
}

func (t *Tracker) notify(s State) {
	if t.opts.OnChange != nil {
		t.opts.OnChange(s)
	}
}
