package geo

import (
	"errors"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrInvalidCoordinates is returned when coordinates are non-finite or out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const earthRadiusMeters = 6371000.0

// LatLng is a WGS84 (EPSG:4326) geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinate is finite and within WGS84 bounds.
func (ll LatLng) Valid() bool {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return false
	}
	return ll.Lat >= -90 && ll.Lat <= 90 && ll.Lng >= -180 && ll.Lng <= 180
}

// Point converts the coordinate to a simplefeatures XY point in EPSG:4326.
func (ll LatLng) Point() geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: ll.Lng, Y: ll.Lat},
		Type: geom.DimXY,
	})
}

// WebMercator projects the coordinate to EPSG:3857 meters.
func (ll LatLng) WebMercator() (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(ll.Lng, ll.Lat, 0)
	return x, y
}

// Distance returns the great-circle distance between two coordinates in meters.
func Distance(a, b LatLng) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Tile is a slippy-map tile coordinate.
type Tile struct {
	X, Y, Zoom int
}

// webMercatorExtent is the half-width of the EPSG:3857 plane in meters; the
// zoom-z tile grid divides the square [-extent, extent] into 2^z cells.
const webMercatorExtent = 20037508.342789244

// TileAt returns the tile containing the coordinate at the given zoom level.
// The coordinate is projected to EPSG:3857 and located on the tile grid;
// latitudes beyond the projection's limits clamp to the edge tiles.
func TileAt(ll LatLng, zoom int) Tile {
	mx, my := ll.WebMercator()
	n := math.Exp2(float64(zoom))
	x := int((mx + webMercatorExtent) / (2 * webMercatorExtent) * n)
	y := int((webMercatorExtent - my) / (2 * webMercatorExtent) * n)
	maxTile := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > maxTile {
		x = maxTile
	}
	if y < 0 {
		y = 0
	} else if y > maxTile {
		y = maxTile
	}
	return Tile{X: x, Y: y, Zoom: zoom}
}

// ViewportEnvelope returns an approximate EPSG:4326 bounding envelope for a
// view centered on ll at the given zoom, assuming a 256px square tile grid
// and the given viewport size in pixels.
func ViewportEnvelope(ll LatLng, zoom int, widthPx, heightPx float64) geom.Envelope {
	metersPerPixel := 156543.03392 * math.Cos(ll.Lat*math.Pi/180) / math.Pow(2, float64(zoom))
	halfWidthDeg := (widthPx / 2 * metersPerPixel) / (earthRadiusMeters * math.Pi / 180) / math.Cos(ll.Lat*math.Pi/180)
	halfHeightDeg := (heightPx / 2 * metersPerPixel) / (earthRadiusMeters * math.Pi / 180)
	return geom.NewEnvelope(
		geom.XY{X: ll.Lng - halfWidthDeg, Y: ll.Lat - halfHeightDeg},
		geom.XY{X: ll.Lng + halfWidthDeg, Y: ll.Lat + halfHeightDeg},
	)
}
