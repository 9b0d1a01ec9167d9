// Package surface owns the map engine instance and wires locator output,
// layer state, and marker factory output onto it. It is the only package
// that talks to the engine directly; everything else goes through the
// Handle.
package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/vivatulum/mapkit/internal/dispatcher"
	"github.com/vivatulum/mapkit/internal/engine"
	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/layers"
	"github.com/vivatulum/mapkit/internal/locate"
	"github.com/vivatulum/mapkit/internal/logging"
	"github.com/vivatulum/mapkit/internal/marker"
	"github.com/vivatulum/mapkit/internal/platform"
	"github.com/vivatulum/mapkit/internal/tiles"
	"github.com/vivatulum/mapkit/internal/venue"
)

// ErrNotMounted is returned by handle calls after the view unmounted or a
// newer mount superseded the handle.
var ErrNotMounted = errors.New("map surface not mounted")

const destinationMarkerID = "__destination__"

// Config holds the controller's behavioral constants.
type Config struct {
	Destination      geo.LatLng
	DefaultZoom      int
	CloseZoom        int
	NearRadiusMeters float64
	AccuracyMin      float64
	AccuracyMax      float64
	DefaultLanguage  string
	DestinationName  string
	Tiles            tiles.Templates
	RadarRefresh     time.Duration
}

// Callbacks is the controller's entire outward contract to the host page.
type Callbacks struct {
	OnLayersChange       func(layers.State)
	OnUserLocationChange func(*venue.UserLocation)
	OnMapReady           func(*Handle)
	OnPlaceSelect        func(venue.Venue)
}

// Controller is the map surface state machine. One controller drives one
// engine; a mounted controller reacts to layer, location, and venue signals
// until unmounted.
type Controller struct {
	cfg      Config
	eng      engine.Engine
	locator  *locate.Locator
	composer *layers.Composer
	store    *venue.Store
	detector platform.Detector
	disp     *dispatcher.Dispatcher
	log      logging.Logger
	cb       Callbacks

	mu         sync.Mutex
	mounted    bool
	generation int
	lastLoc    *venue.UserLocation
	radarStop  chan struct{}
	cancelSubs []func()

	rebuilds  metric.Int64Counter
	locateDur metric.Float64Histogram
}

// New creates an unmounted controller.
func New(
	cfg Config,
	eng engine.Engine,
	locator *locate.Locator,
	composer *layers.Composer,
	store *venue.Store,
	detector platform.Detector,
	log logging.Logger,
	cb Callbacks,
) (*Controller, error) {
	if log == nil {
		log = logging.Nop()
	}
	if detector == nil {
		detector = platform.Static{Value: platform.Other}
	}

	disp, err := dispatcher.New(log)
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	c := &Controller{
		cfg:      cfg,
		eng:      eng,
		locator:  locator,
		composer: composer,
		store:    store,
		detector: detector,
		disp:     disp,
		log:      log,
		cb:       cb,
	}

	m := meter()
	c.rebuilds, err = m.Int64Counter(
		"surface.marker.rebuilds",
		metric.WithDescription("Total full marker layer rebuilds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rebuild counter: %w", err)
	}
	c.locateDur, err = m.Float64Histogram(
		"surface.locate.duration",
		metric.WithDescription("Duration of location acquisitions in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating locate histogram: %w", err)
	}

	c.disp.Register(dispatcher.TopicLayers, c.handleLayers)
	c.disp.Register(dispatcher.TopicLocation, c.handleLocation)
	c.disp.Register(dispatcher.TopicVenues, c.handleVenues)

	return c, nil
}

// Mount initializes the engine, draws the initial scene, and starts
// reacting to upstream signals. A successful mount invalidates any handle
// from a previous mount.
func (c *Controller) Mount() (*Handle, error) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		c.Unmount()
		c.mu.Lock()
	}

	if err := c.eng.Init(); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("engine init: %w", err)
	}

	c.mounted = true
	c.generation++
	handle := &Handle{c: c, generation: c.generation}

	state := c.composer.State()
	c.applyBaseLocked(state)
	c.applyRadarLocked(state, time.Now())
	if err := c.eng.SetView(engine.View{Center: c.cfg.Destination, Zoom: c.cfg.DefaultZoom}); err != nil {
		c.log.Error("initial view failed", "error", err)
	}
	c.rebuildLocked()

	c.radarStop = make(chan struct{})
	go c.radarLoop(c.radarStop)

	c.cancelSubs = append(c.cancelSubs,
		c.store.Subscribe(func() {
			_ = c.disp.Dispatch(dispatcher.Signal{Topic: dispatcher.TopicVenues, Timestamp: time.Now()})
		}),
		c.locator.Subscribe(func(loc venue.UserLocation) {
			_ = c.disp.Dispatch(dispatcher.Signal{Topic: dispatcher.TopicLocation, Payload: loc, Timestamp: time.Now()})
		}),
		c.composer.OnChange(func(s layers.State) {
			_ = c.disp.Dispatch(dispatcher.Signal{Topic: dispatcher.TopicLayers, Payload: s, Timestamp: time.Now()})
		}),
	)

	c.mu.Unlock()

	if c.cb.OnMapReady != nil {
		c.cb.OnMapReady(handle)
	}
	return handle, nil
}

// Unmount tears the surface down: radar timer, geolocation watch, layers,
// markers, and the engine instance. Nothing may outlive the view.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false

	if c.radarStop != nil {
		close(c.radarStop)
		c.radarStop = nil
	}
	cancels := c.cancelSubs
	c.cancelSubs = nil
	c.lastLoc = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	c.locator.Release()

	if err := c.eng.Close(); err != nil {
		c.log.Error("engine close failed", "error", err)
	}
}

// Mounted reports whether the surface is live.
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// LastLocation returns the most recent near-destination user location, or
// nil when unknown or too far away.
func (c *Controller) LastLocation() *venue.UserLocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLoc
}

// --- signal handlers ---

func (c *Controller) handleLayers(s dispatcher.Signal) error {
	state, ok := s.Payload.(layers.State)
	if !ok {
		state = c.composer.State()
	}

	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.applyBaseLocked(state)
	c.applyRadarLocked(state, time.Now())
	c.rebuildLocked()
	c.mu.Unlock()

	if c.cb.OnLayersChange != nil {
		c.cb.OnLayersChange(state)
	}
	return nil
}

func (c *Controller) handleLocation(s dispatcher.Signal) error {
	loc, ok := s.Payload.(venue.UserLocation)
	if !ok {
		return fmt.Errorf("location signal with %T payload", s.Payload)
	}

	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.applyLocationLocked(&loc)
	last := c.lastLoc
	c.mu.Unlock()

	if c.cb.OnUserLocationChange != nil {
		c.cb.OnUserLocationChange(last)
	}
	return nil
}

func (c *Controller) handleVenues(dispatcher.Signal) error {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.rebuildLocked()
	c.mu.Unlock()
	return nil
}

// --- engine mutations (callers hold mu) ---

func (c *Controller) applyBaseLocked(state layers.State) {
	var tpl string
	switch state.Base {
	case layers.BaseDark:
		tpl = c.cfg.Tiles.Dark
	case layers.BaseSatellite:
		tpl = c.cfg.Tiles.Satellite
	default:
		tpl = c.cfg.Tiles.Standard
	}
	if err := c.eng.SetBaseLayer(state.Base, tpl); err != nil {
		c.log.Error("base layer change failed", "base", string(state.Base), "error", err)
	}
}

func (c *Controller) applyRadarLocked(state layers.State, now time.Time) {
	if state.Radar {
		if err := c.eng.SetOverlay(layers.OverlayRadar, c.cfg.Tiles.RadarURL(now), true); err != nil {
			c.log.Error("radar overlay attach failed", "error", err)
		}
		return
	}
	if err := c.eng.RemoveOverlay(layers.OverlayRadar); err != nil {
		c.log.Error("radar overlay detach failed", "error", err)
	}
}

// applyLocationLocked renders or clears the user marker depending on the
// distance to the destination. The accuracy circle radius is clamped so
// degenerate sensor accuracy can't produce absurd rendering.
func (c *Controller) applyLocationLocked(loc *venue.UserLocation) {
	if loc != nil {
		d := geo.Distance(geo.LatLng{Lat: loc.Lat, Lng: loc.Lng}, c.cfg.Destination)
		if d <= c.cfg.NearRadiusMeters {
			c.lastLoc = loc
			radius := geo.Clamp(loc.AccuracyMeters, c.cfg.AccuracyMin, c.cfg.AccuracyMax)
			if err := c.eng.SetUserMarker(*loc, radius); err != nil {
				c.log.Error("user marker update failed", "error", err)
			}
			return
		}
		c.log.Debug("user outside near radius, clearing marker", "distance", d)
	}
	c.lastLoc = nil
	if err := c.eng.RemoveUserMarker(); err != nil {
		c.log.Error("user marker removal failed", "error", err)
	}
}

// rebuildLocked clears and repopulates the marker layer group from scratch.
// Full rebuild is deliberate: category toggles are coarse and rebuild cost
// is small relative to the correctness risk of incremental patching.
func (c *Controller) rebuildLocked() {
	if err := c.eng.ClearMarkers(); err != nil {
		c.log.Error("marker clear failed", "error", err)
		return
	}

	if err := c.eng.UpsertMarker(marker.Marker{
		ID:    destinationMarkerID,
		Lat:   c.cfg.Destination.Lat,
		Lng:   c.cfg.Destination.Lng,
		Icon:  marker.IconDestination,
		Title: c.cfg.DestinationName,
	}); err != nil {
		c.log.Error("destination marker failed", "error", err)
	}

	state := c.composer.State()
	favs := c.store.Favorites()
	viewer := marker.Viewer{
		Language:        c.store.Language(),
		DefaultLanguage: c.cfg.DefaultLanguage,
		Platform:        c.detector.Platform(),
		Location:        c.lastLoc,
	}

	categoryOverlays := map[venue.Category]layers.LayerID{
		venue.CategoryBeachClubs:  layers.OverlayBeachClubs,
		venue.CategoryRestaurants: layers.OverlayRestaurants,
		venue.CategoryCafes:       layers.OverlayCafes,
		venue.CategoryCultural:    layers.OverlayCultural,
	}

	for _, cat := range venue.Categories {
		if !state.Active(categoryOverlays[cat]) {
			continue
		}
		for _, v := range c.store.Venues(cat) {
			viewer.Favorite = favs.Has(v.ID)
			c.addMarkerLocked(v, viewer)
		}
	}

	if state.Favorites {
		viewer.Favorite = true
		for _, v := range c.store.AllVenues() {
			if !favs.Has(v.ID) {
				continue
			}
			c.addMarkerLocked(v, viewer)
		}
	}

	c.rebuilds.Add(context.Background(), 1)
}

func (c *Controller) addMarkerLocked(v venue.Venue, viewer marker.Viewer) {
	m, err := marker.Build(v, viewer)
	if err != nil {
		// Malformed venue data is skipped, not surfaced.
		c.log.Debug("skipping venue marker", "venue", v.ID, "error", err)
		return
	}
	if err := c.eng.UpsertMarker(m); err != nil {
		c.log.Error("marker upsert failed", "venue", v.ID, "error", err)
	}
}

// radarLoop swaps the radar overlay URL to the current time bucket on every
// refresh interval, preserving visibility.
func (c *Controller) radarLoop(stop chan struct{}) {
	interval := c.cfg.RadarRefresh
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			if c.mounted {
				c.applyRadarLocked(c.composer.State(), now)
			}
			c.mu.Unlock()
		}
	}
}
