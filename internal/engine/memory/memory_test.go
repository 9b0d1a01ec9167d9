package memory

import (
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivatulum/mapkit/internal/engine"
	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/layers"
	"github.com/vivatulum/mapkit/internal/marker"
	"github.com/vivatulum/mapkit/internal/venue"
)

// Compile-time interface check.
var _ engine.Engine = (*Engine)(nil)

func newReady(t *testing.T) *Engine {
	t.Helper()
	e := New()
	require.NoError(t, e.Init())
	return e
}

func TestEngine_MutationsBeforeInitFail(t *testing.T) {
	e := New()

	assert.Error(t, e.SetBaseLayer(layers.BaseStandard, "tpl"))
	assert.Error(t, e.UpsertMarker(marker.Marker{ID: "m1"}))
	assert.Error(t, e.SetView(engine.View{}))
}

func TestEngine_BaseLayerReplaced(t *testing.T) {
	e := newReady(t)

	require.NoError(t, e.SetBaseLayer(layers.BaseStandard, "std"))
	require.NoError(t, e.SetBaseLayer(layers.BaseSatellite, "sat"))

	id, url := e.BaseLayer()
	assert.Equal(t, layers.BaseSatellite, id)
	assert.Equal(t, "sat", url)
}

func TestEngine_UpsertMarker_NoDuplicates(t *testing.T) {
	e := newReady(t)

	m := marker.Marker{ID: "m1", Lat: 20.2, Lng: -87.4}
	require.NoError(t, e.UpsertMarker(m))
	m.Title = "updated"
	require.NoError(t, e.UpsertMarker(m))

	require.Equal(t, 1, e.MarkerCount())
	assert.Equal(t, "updated", e.Markers()[0].Title)
}

func TestEngine_ClearMarkers(t *testing.T) {
	e := newReady(t)

	require.NoError(t, e.UpsertMarker(marker.Marker{ID: "m1"}))
	require.NoError(t, e.UpsertMarker(marker.Marker{ID: "m2"}))
	require.NoError(t, e.ClearMarkers())

	assert.Equal(t, 0, e.MarkerCount())
}

func TestEngine_UserMarkerLifecycle(t *testing.T) {
	e := newReady(t)

	require.NoError(t, e.SetUserMarker(venue.UserLocation{Lat: 20.2, Lng: -87.4}, 50))
	u := e.User()
	require.NotNil(t, u)
	assert.Equal(t, 50.0, u.RadiusMeters)

	require.NoError(t, e.RemoveUserMarker())
	assert.Nil(t, e.User())
}

func TestEngine_ZoomAndFlyTo(t *testing.T) {
	e := newReady(t)

	require.NoError(t, e.SetView(engine.View{Center: geo.LatLng{Lat: 20.2, Lng: -87.4}, Zoom: 14}))
	require.NoError(t, e.ZoomIn())
	assert.Equal(t, 15, e.View().Zoom)

	require.NoError(t, e.FlyTo(engine.View{Center: geo.LatLng{Lat: 20.1, Lng: -87.5}, Zoom: 17}))
	assert.Equal(t, 17, e.View().Zoom)
	assert.Equal(t, 1, e.FlyToCalls())
}

func TestEngine_CloseDiscardsEverything(t *testing.T) {
	e := newReady(t)

	require.NoError(t, e.SetBaseLayer(layers.BaseDark, "dark"))
	require.NoError(t, e.UpsertMarker(marker.Marker{ID: "m1"}))
	require.NoError(t, e.SetUserMarker(venue.UserLocation{Lat: 20.2, Lng: -87.4}, 30))
	require.NoError(t, e.Close())

	assert.True(t, e.Closed())
	assert.Equal(t, 0, e.MarkerCount())
	assert.Nil(t, e.User())
	assert.Error(t, e.UpsertMarker(marker.Marker{ID: "m2"}), "closed engine rejects mutations")

	// Close is idempotent.
	assert.NoError(t, e.Close())
}

func TestEngine_ViewportContainsCenter(t *testing.T) {
	e := newReady(t)
	center := geo.LatLng{Lat: 20.2114, Lng: -87.4654}
	require.NoError(t, e.SetView(engine.View{Center: center, Zoom: 14}))

	env := e.Viewport()
	assert.True(t, env.Contains(geom.XY{X: center.Lng, Y: center.Lat}))
}
