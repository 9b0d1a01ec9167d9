package search

import (
	"strings"
	"sync"
	"time"

	"github.com/vivatulum/mapkit/internal/venue"
)

// Config holds search behavior settings.
type Config struct {
	MinQueryLen int
	MaxResults  int
	Debounce    time.Duration
	Popular     []string
	FlyToZoom   int
}

// Callbacks are the outward contract of the search control.
type Callbacks struct {
	// FlyTo is invoked once per selection with the venue coordinates.
	FlyTo func(lat, lng float64, zoom int)
	// OnSelect notifies the host page of the chosen venue.
	OnSelect func(venue.Venue)
	// OnPlainSearch fires when Enter is pressed with no highlighted result.
	OnPlainSearch func(query string)
}

// Control owns the search input interaction: debounced evaluation, the
// suggestion panel, keyboard navigation, and selection.
type Control struct {
	cfg   Config
	index *Index
	cb    Callbacks

	mu        sync.Mutex
	input     string
	results   []Entry
	popular   bool
	open      bool
	highlight int // -1 when nothing highlighted
	debounce  *time.Timer
}

// NewControl creates a search control over the given index.
func NewControl(index *Index, cfg Config, cb Callbacks) *Control {
	return &Control{
		cfg:       cfg,
		index:     index,
		cb:        cb,
		highlight: -1,
	}
}

// SetQuery records the latest input value and schedules evaluation after the
// debounce window. Superseded keystrokes are discarded, not queued: only the
// value present when the window elapses is evaluated.
func (c *Control) SetQuery(q string) {
	c.mu.Lock()
	c.input = q
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.cfg.Debounce, c.evaluateLatest)
	c.mu.Unlock()
}

// evaluateLatest runs the query that is current at fire time.
func (c *Control) evaluateLatest() {
	c.mu.Lock()
	q := c.input
	c.mu.Unlock()
	c.Evaluate(q)
}

// Evaluate runs the query immediately, bypassing the debounce. Queries
// shorter than the minimum length open the popular-searches panel instead of
// venue suggestions.
func (c *Control) Evaluate(q string) {
	trimmed := strings.TrimSpace(q)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.highlight = -1
	c.open = true
	if len([]rune(trimmed)) < c.cfg.MinQueryLen {
		c.results = nil
		c.popular = true
		return
	}
	c.popular = false
	c.results = c.index.Query(trimmed, c.cfg.MaxResults)
}

// Input returns the visible input text.
func (c *Control) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Results returns the current venue suggestions.
func (c *Control) Results() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// PopularActive reports whether the popular-searches list is showing.
func (c *Control) PopularActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open && c.popular
}

// Popular returns the fixed popular-searches list.
func (c *Control) Popular() []string {
	return c.cfg.Popular
}

// Open reports whether the suggestion panel is visible.
func (c *Control) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Highlight returns the highlighted result index, or -1.
func (c *Control) Highlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.highlight
}

// MoveHighlight moves the highlighted index by delta, clamped to the current
// result bounds. With no results the highlight stays cleared.
func (c *Control) MoveHighlight(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.results) == 0 {
		c.highlight = -1
		return
	}
	next := c.highlight + delta
	if next < 0 {
		next = 0
	}
	if next > len(c.results)-1 {
		next = len(c.results) - 1
	}
	c.highlight = next
}

// Enter selects the highlighted result, or issues a plain-text search when
// nothing is highlighted.
func (c *Control) Enter() {
	c.mu.Lock()
	if c.highlight >= 0 && c.highlight < len(c.results) {
		entry := c.results[c.highlight]
		c.mu.Unlock()
		c.Select(entry)
		return
	}
	q := c.input
	c.open = false
	c.mu.Unlock()

	if c.cb.OnPlainSearch != nil {
		c.cb.OnPlainSearch(q)
	}
}

// Escape dismisses the suggestion panel.
func (c *Control) Escape() {
	c.dismiss()
}

// DismissOutside dismisses the panel on a click outside the search control.
func (c *Control) DismissOutside() {
	c.dismiss()
}

func (c *Control) dismiss() {
	c.mu.Lock()
	c.open = false
	c.highlight = -1
	c.mu.Unlock()
}

// Select applies a suggestion: the input shows the venue name, the panel
// closes, the host is notified, and the map flies to the venue.
func (c *Control) Select(e Entry) {
	c.mu.Lock()
	c.input = e.Venue.Name
	c.open = false
	c.popular = false
	c.results = nil
	c.highlight = -1
	c.mu.Unlock()

	if c.cb.OnSelect != nil {
		c.cb.OnSelect(e.Venue)
	}
	if c.cb.FlyTo != nil {
		c.cb.FlyTo(e.Venue.Lat, e.Venue.Lng, c.cfg.FlyToZoom)
	}
}

// Stop cancels any pending debounce timer.
func (c *Control) Stop() {
	c.mu.Lock()
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	c.mu.Unlock()
}
