package geo

import (
	"math"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
)

func TestLatLng_Valid(t *testing.T) {
	if !(LatLng{Lat: 20.2114, Lng: -87.4654}).Valid() {
		t.Error("expected Tulum coordinates to be valid")
	}
	if (LatLng{Lat: math.NaN(), Lng: 0}).Valid() {
		t.Error("expected NaN latitude to be invalid")
	}
	if (LatLng{Lat: 91, Lng: 0}).Valid() {
		t.Error("expected out-of-range latitude to be invalid")
	}
	if (LatLng{Lat: 0, Lng: -181}).Valid() {
		t.Error("expected out-of-range longitude to be invalid")
	}
}

func TestLatLng_Point(t *testing.T) {
	p := LatLng{Lat: 20.5, Lng: -87.25}.Point()

	coords, ok := p.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if coords.X != -87.25 {
		t.Errorf("expected X=-87.25, got %f", coords.X)
	}
	if coords.Y != 20.5 {
		t.Errorf("expected Y=20.5, got %f", coords.Y)
	}
}

func TestLatLng_WebMercator(t *testing.T) {
	x, y := (LatLng{Lat: 0, Lng: 0}).WebMercator()
	if math.Abs(x) > 1e-6 || math.Abs(y) > 1e-6 {
		t.Errorf("expected origin to project to (0,0), got (%f,%f)", x, y)
	}

	x, _ = (LatLng{Lat: 0, Lng: 180}).WebMercator()
	if math.Abs(x-20037508.34) > 1.0 {
		t.Errorf("expected x near 20037508.34 at lng 180, got %f", x)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	// Tulum beach to Tulum ruins, roughly 4 km.
	a := LatLng{Lat: 20.2114, Lng: -87.4654}
	b := LatLng{Lat: 20.2147, Lng: -87.4290}

	d := Distance(a, b)
	if d < 3500 || d > 4500 {
		t.Errorf("expected distance near 4km, got %f", d)
	}
}

func TestDistance_Zero(t *testing.T) {
	a := LatLng{Lat: 20.2114, Lng: -87.4654}
	if d := Distance(a, a); d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 10, 500); got != 10 {
		t.Errorf("expected clamp up to 10, got %f", got)
	}
	if got := Clamp(900, 10, 500); got != 500 {
		t.Errorf("expected clamp down to 500, got %f", got)
	}
	if got := Clamp(42, 10, 500); got != 42 {
		t.Errorf("expected 42 unchanged, got %f", got)
	}
}

func TestTileAt(t *testing.T) {
	tile := TileAt(LatLng{Lat: 0, Lng: 0}, 1)
	if tile.X != 1 || tile.Y != 1 {
		t.Errorf("expected tile (1,1) at origin zoom 1, got (%d,%d)", tile.X, tile.Y)
	}

	tile = TileAt(LatLng{Lat: 85.1, Lng: -179.9}, 4)
	if tile.X < 0 || tile.Y < 0 || tile.X > 15 || tile.Y > 15 {
		t.Errorf("expected tile clamped to zoom-4 bounds, got (%d,%d)", tile.X, tile.Y)
	}
}

func TestTileAt_KnownSlippyCoordinates(t *testing.T) {
	// Tulum beach zone at zoom 14 per the standard slippy-map grid.
	tile := TileAt(LatLng{Lat: 20.2114, Lng: -87.4654}, 14)
	if tile.X != 4211 || tile.Y != 7252 {
		t.Errorf("expected tile (4211,7252), got (%d,%d)", tile.X, tile.Y)
	}
}

func TestViewportEnvelope_ContainsCenter(t *testing.T) {
	center := LatLng{Lat: 20.2114, Lng: -87.4654}
	env := ViewportEnvelope(center, 14, 1024, 768)

	if !env.Contains(geom.XY{X: center.Lng, Y: center.Lat}) {
		t.Error("expected viewport envelope to contain its center")
	}
}
