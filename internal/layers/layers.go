package layers

import "sync"

// LayerID names a toggleable layer.
type LayerID string

// Base imagery layers: exactly one is active at any time.
const (
	BaseStandard  LayerID = "standard"
	BaseDark      LayerID = "dark"
	BaseSatellite LayerID = "satellite"
)

// Overlay layers: independently toggleable.
const (
	OverlayRadar       LayerID = "radar"
	OverlayBeachClubs  LayerID = "beach_clubs"
	OverlayRestaurants LayerID = "restaurants"
	OverlayCafes       LayerID = "cafes"
	OverlayCultural    LayerID = "cultural"
	OverlayFavorites   LayerID = "favorites"
)

// BaseLayers lists the mutually-exclusive base imagery ids.
var BaseLayers = []LayerID{BaseStandard, BaseDark, BaseSatellite}

// State is a snapshot of which layers are active.
type State struct {
	Base        LayerID
	Radar       bool
	BeachClubs  bool
	Restaurants bool
	Cafes       bool
	Cultural    bool
	Favorites   bool
}

// Active reports whether the given layer id is on in this state.
func (s State) Active(id LayerID) bool {
	switch id {
	case BaseStandard, BaseDark, BaseSatellite:
		return s.Base == id
	case OverlayRadar:
		return s.Radar
	case OverlayBeachClubs:
		return s.BeachClubs
	case OverlayRestaurants:
		return s.Restaurants
	case OverlayCafes:
		return s.Cafes
	case OverlayCultural:
		return s.Cultural
	case OverlayFavorites:
		return s.Favorites
	}
	return false
}

// Composer owns the layer selection: radio-button semantics for base imagery
// and independent booleans for overlays. Change listeners receive the full
// state after every toggle.
type Composer struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewComposer creates a Composer with the standard base layer and the venue
// category overlays enabled, matching the application's initial view.
func NewComposer() *Composer {
	return &Composer{
		subs: make(map[int]func(State)),
		state: State{
			Base:        BaseStandard,
			BeachClubs:  true,
			Restaurants: true,
			Cafes:       true,
			Cultural:    true,
		},
	}
}

// State returns the current layer state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnChange registers fn to run with the new state after each toggle.
// Returns a cancel func.
func (c *Composer) OnChange(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Toggle flips the given layer. Base imagery ids use radio semantics: the
// requested base becomes active and the others inactive. Toggling the
// already-active base is a no-op that keeps the invariant intact.
func (c *Composer) Toggle(id LayerID) {
	c.mu.Lock()
	switch id {
	case BaseStandard, BaseDark, BaseSatellite:
		c.state.Base = id
	case OverlayRadar:
		c.state.Radar = !c.state.Radar
	case OverlayBeachClubs:
		c.state.BeachClubs = !c.state.BeachClubs
	case OverlayRestaurants:
		c.state.Restaurants = !c.state.Restaurants
	case OverlayCafes:
		c.state.Cafes = !c.state.Cafes
	case OverlayCultural:
		c.state.Cultural = !c.state.Cultural
	case OverlayFavorites:
		c.state.Favorites = !c.state.Favorites
	default:
		c.mu.Unlock()
		return
	}
	state := c.state
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
