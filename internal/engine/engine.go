// Package engine defines the imperative rendering surface the map core
// drives. The surface controller is the only caller; everything else talks
// to the controller's handle.
package engine

import (
	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/layers"
	"github.com/vivatulum/mapkit/internal/marker"
	"github.com/vivatulum/mapkit/internal/venue"
)

// View is a map viewport: a center coordinate and an integer zoom level.
type View struct {
	Center geo.LatLng
	Zoom   int
}

// Engine is the rendering surface capability. Implementations must tolerate
// repeated Close calls and mutations in any order; the controller serializes
// all access.
type Engine interface {
	// Lifecycle
	Init() error
	Close() error

	// Layer management
	SetBaseLayer(id layers.LayerID, urlTemplate string) error
	SetOverlay(id layers.LayerID, urlTemplate string, visible bool) error
	RemoveOverlay(id layers.LayerID) error

	// Marker layer group
	UpsertMarker(m marker.Marker) error
	ClearMarkers() error

	// User marker plus accuracy circle; radius is already clamped by the
	// controller.
	SetUserMarker(loc venue.UserLocation, radiusMeters float64) error
	RemoveUserMarker() error

	// Viewport
	SetView(v View) error
	FlyTo(v View) error
	ZoomIn() error
	ZoomOut() error
	InvalidateSize() error
}
