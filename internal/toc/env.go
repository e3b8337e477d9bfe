package toc

import (
	"sort"
	"sync"
	"time"
)

// Box is an element's vertical extent in document coordinates.
type Box struct {
	Top    float64
	Height float64
}

func (b Box) Bottom() float64 { return b.Top + b.Height }

// Document finds rendered elements by id.
type Document interface {
	Lookup(id string) (Box, bool)
}

// RootMargin shrinks the observed viewport region: Top pixels off the top,
// BottomRatio of the viewport height off the bottom.
type RootMargin struct {
	Top         float64
	BottomRatio float64
}

// Entry reports that the element with ID entered or left the region.
type Entry struct {
	ID           string
	Intersecting bool
}

type Observer interface {
	Observe(id string)
	Disconnect()
}

// ObserverFactory creates intersection observers. Callbacks arrive
// asynchronously, possibly batched, and never from inside Observe.
type ObserverFactory interface {
	NewObserver(margin RootMargin, callback func([]Entry)) Observer
}

type Scroller interface {
	ScrollTo(y float64, smooth bool)
}

// Scheduler runs f after d. The returned func cancels it; calling it after
// f ran is a no-op.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (cancel func())
}

// ClickEvent is the navigation event of a table of contents link.
type ClickEvent interface {
	PreventDefault()
}

// Clock schedules on real timers.
type Clock struct{}

func (Clock) AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// ManualClock fires timers only when Advance moves time past them.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at       time.Duration
	seq      int
	f        func()
	canceled bool
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return func() {
		c.mu.Lock()
		t.canceled = true
		c.mu.Unlock()
	}
}

// Advance moves the clock forward and runs every due timer in order.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due, rest []*manualTimer
	for _, t := range c.timers {
		switch {
		case t.canceled:
		case t.at <= c.now:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		c.mu.Lock()
		canceled := t.canceled
		c.mu.Unlock()
		if !canceled {
			t.f()
		}
	}
}

// Pending reports how many timers are waiting.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.canceled {
			n++
		}
	}
	return n
}
