package surface

import (
	"context"
	"time"

	"github.com/vivatulum/mapkit/internal/engine"
	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/venue"
)

// Handle is the host-facing control surface for one mount. A handle stops
// working the moment the controller unmounts or remounts; stale handles
// return ErrNotMounted instead of driving a dead or foreign engine.
type Handle struct {
	c          *Controller
	generation int
}

func (h *Handle) live() bool {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.mounted && h.c.generation == h.generation
}

// ResetView recenters the map: on the user when a recent near-destination
// position is known, otherwise on the destination at the default zoom.
func (h *Handle) ResetView() error {
	if !h.live() {
		return ErrNotMounted
	}

	h.c.mu.Lock()
	defer h.c.mu.Unlock()

	if loc := h.c.lastLoc; loc != nil {
		return h.c.eng.SetView(engine.View{
			Center: geo.LatLng{Lat: loc.Lat, Lng: loc.Lng},
			Zoom:   h.c.cfg.CloseZoom,
		})
	}
	return h.c.eng.SetView(engine.View{
		Center: h.c.cfg.Destination,
		Zoom:   h.c.cfg.DefaultZoom,
	})
}

// LocateUser acquires the device position and applies it to the map. On
// success the map flies to the user at close zoom and the live watch keeps
// feeding updates. When no position can be acquired within the timeout the
// view falls back to the destination default and nil is returned.
func (h *Handle) LocateUser(ctx context.Context) error {
	if !h.live() {
		return ErrNotMounted
	}

	start := time.Now()
	loc := h.c.locator.Acquire(ctx)
	h.c.locateDur.Record(ctx, time.Since(start).Seconds())

	h.c.mu.Lock()
	if !h.c.mounted || h.c.generation != h.generation {
		h.c.mu.Unlock()
		return ErrNotMounted
	}
	h.c.applyLocationLocked(loc)
	applied := h.c.lastLoc

	var err error
	if applied != nil {
		err = h.c.eng.FlyTo(engine.View{
			Center: geo.LatLng{Lat: applied.Lat, Lng: applied.Lng},
			Zoom:   h.c.cfg.CloseZoom,
		})
	} else {
		err = h.c.eng.SetView(engine.View{
			Center: h.c.cfg.Destination,
			Zoom:   h.c.cfg.DefaultZoom,
		})
	}
	h.c.mu.Unlock()

	if h.c.cb.OnUserLocationChange != nil {
		h.c.cb.OnUserLocationChange(applied)
	}
	return err
}

// FlyTo animates the view to the given point and zoom.
func (h *Handle) FlyTo(lat, lng float64, zoom int) error {
	if !h.live() {
		return ErrNotMounted
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.eng.FlyTo(engine.View{Center: geo.LatLng{Lat: lat, Lng: lng}, Zoom: zoom})
}

// ZoomIn steps the zoom level up by one.
func (h *Handle) ZoomIn() error {
	if !h.live() {
		return ErrNotMounted
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.eng.ZoomIn()
}

// ZoomOut steps the zoom level down by one.
func (h *Handle) ZoomOut() error {
	if !h.live() {
		return ErrNotMounted
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.eng.ZoomOut()
}

// ShowPlace flies to a chosen place and notifies the host of the selection.
func (h *Handle) ShowPlace(v venue.Venue, zoom int) error {
	if err := h.FlyTo(v.Lat, v.Lng, zoom); err != nil {
		return err
	}
	if h.c.cb.OnPlaceSelect != nil {
		h.c.cb.OnPlaceSelect(v)
	}
	return nil
}

// InvalidateSize tells the engine its container was resized or revealed.
func (h *Handle) InvalidateSize() error {
	if !h.live() {
		return ErrNotMounted
	}
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.c.eng.InvalidateSize()
}
