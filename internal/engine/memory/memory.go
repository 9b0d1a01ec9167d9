// Package memory provides an in-memory Engine used by tests, the demo
// harness, and any headless embedding that only needs the coordination
// semantics, not pixels.
package memory

import (
	"fmt"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/vivatulum/mapkit/internal/engine"
	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/layers"
	"github.com/vivatulum/mapkit/internal/marker"
	"github.com/vivatulum/mapkit/internal/venue"
)

// Overlay is the recorded state of one attached overlay layer.
type Overlay struct {
	URLTemplate string
	Visible     bool
}

// UserMarker is the recorded user position plus its accuracy circle.
type UserMarker struct {
	Location     venue.UserLocation
	RadiusMeters float64
}

// Engine records every mutation so tests can assert on the resulting state.
type Engine struct {
	mu sync.RWMutex

	initialized bool
	closed      bool

	base        layers.LayerID
	baseURL     string
	overlays    map[layers.LayerID]Overlay
	markers     map[string]marker.Marker
	markerOrder []string
	user        *UserMarker
	view        engine.View
	flyToCalls  int
	invalidated int
}

// New creates an uninitialized memory engine.
func New() *Engine {
	return &Engine{
		overlays: make(map[layers.LayerID]Overlay),
		markers:  make(map[string]marker.Marker),
	}
}

// Init marks the engine ready for mutations.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized && !e.closed {
		return fmt.Errorf("engine already initialized")
	}
	e.initialized = true
	e.closed = false
	return nil
}

// Close discards all attached layers and markers. Safe to call repeatedly.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.base = ""
	e.baseURL = ""
	e.overlays = make(map[layers.LayerID]Overlay)
	e.markers = make(map[string]marker.Marker)
	e.markerOrder = nil
	e.user = nil
	return nil
}

func (e *Engine) checkReady() error {
	if !e.initialized || e.closed {
		return fmt.Errorf("engine not initialized")
	}
	return nil
}

// SetBaseLayer replaces the active base imagery.
func (e *Engine) SetBaseLayer(id layers.LayerID, urlTemplate string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.base = id
	e.baseURL = urlTemplate
	return nil
}

// SetOverlay attaches or updates an overlay layer.
func (e *Engine) SetOverlay(id layers.LayerID, urlTemplate string, visible bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.overlays[id] = Overlay{URLTemplate: urlTemplate, Visible: visible}
	return nil
}

// RemoveOverlay detaches an overlay layer.
func (e *Engine) RemoveOverlay(id layers.LayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	delete(e.overlays, id)
	return nil
}

// UpsertMarker adds or replaces a marker in the marker layer group.
func (e *Engine) UpsertMarker(m marker.Marker) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	if _, exists := e.markers[m.ID]; !exists {
		e.markerOrder = append(e.markerOrder, m.ID)
	}
	e.markers[m.ID] = m
	return nil
}

// ClearMarkers empties the marker layer group.
func (e *Engine) ClearMarkers() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.markers = make(map[string]marker.Marker)
	e.markerOrder = nil
	return nil
}

// SetUserMarker creates or repositions the user marker and accuracy circle.
func (e *Engine) SetUserMarker(loc venue.UserLocation, radiusMeters float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.user = &UserMarker{Location: loc, RadiusMeters: radiusMeters}
	return nil
}

// RemoveUserMarker removes the user marker and accuracy circle, if present.
func (e *Engine) RemoveUserMarker() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.user = nil
	return nil
}

// SetView jumps the viewport without animation.
func (e *Engine) SetView(v engine.View) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.view = v
	return nil
}

// FlyTo animates the viewport to the target. The memory engine records it as
// an immediate view change.
func (e *Engine) FlyTo(v engine.View) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.view = v
	e.flyToCalls++
	return nil
}

// ZoomIn increments the view zoom.
func (e *Engine) ZoomIn() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.view.Zoom++
	return nil
}

// ZoomOut decrements the view zoom.
func (e *Engine) ZoomOut() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.view.Zoom--
	return nil
}

// InvalidateSize records a layout invalidation.
func (e *Engine) InvalidateSize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkReady(); err != nil {
		return err
	}
	e.invalidated++
	return nil
}

// --- inspection helpers for tests and the demo ---

// BaseLayer returns the active base imagery id and template.
func (e *Engine) BaseLayer() (layers.LayerID, string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.base, e.baseURL
}

// Overlays returns a copy of the attached overlays.
func (e *Engine) Overlays() map[layers.LayerID]Overlay {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[layers.LayerID]Overlay, len(e.overlays))
	for k, v := range e.overlays {
		out[k] = v
	}
	return out
}

// Markers returns the marker layer group in insertion order.
func (e *Engine) Markers() []marker.Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]marker.Marker, 0, len(e.markerOrder))
	for _, id := range e.markerOrder {
		out = append(out, e.markers[id])
	}
	return out
}

// MarkerCount returns the number of markers in the layer group.
func (e *Engine) MarkerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.markers)
}

// User returns the current user marker, or nil.
func (e *Engine) User() *UserMarker {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.user == nil {
		return nil
	}
	u := *e.user
	return &u
}

// View returns the current viewport.
func (e *Engine) View() engine.View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view
}

// FlyToCalls returns how many animated transitions were requested.
func (e *Engine) FlyToCalls() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.flyToCalls
}

// Invalidations returns how many layout invalidations were requested.
func (e *Engine) Invalidations() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.invalidated
}

// Closed reports whether the engine has been torn down.
func (e *Engine) Closed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

// Viewport returns an approximate geographic envelope for the current view,
// assuming a 1024x768 pixel surface.
func (e *Engine) Viewport() geom.Envelope {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return geo.ViewportEnvelope(e.view.Center, e.view.Zoom, 1024, 768)
}
