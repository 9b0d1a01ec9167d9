package tiles

import (
	"fmt"
	"strings"
	"time"

	"github.com/vivatulum/mapkit/internal/geo"
)

// Templates holds the configured tile URL templates for every imagery source.
type Templates struct {
	Standard    string
	Dark        string
	Satellite   string
	Radar       string // contains a {t} placeholder for the time bucket
	RadarBucket time.Duration
}

// RadarURL returns the radar overlay template for the given time, with the
// {t} placeholder replaced by the current time bucket. Two calls within the
// same bucket produce identical URLs.
func (t Templates) RadarURL(now time.Time) string {
	bucket := t.RadarBucket
	if bucket <= 0 {
		bucket = 600 * time.Second
	}
	ts := now.Unix() - now.Unix()%int64(bucket.Seconds())
	return strings.ReplaceAll(t.Radar, "{t}", fmt.Sprintf("%d", ts))
}

// Expand fills the {z}/{x}/{y} placeholders of a template for one tile.
func Expand(template string, tile geo.Tile) string {
	r := strings.NewReplacer(
		"{z}", fmt.Sprintf("%d", tile.Zoom),
		"{x}", fmt.Sprintf("%d", tile.X),
		"{y}", fmt.Sprintf("%d", tile.Y),
	)
	return r.Replace(template)
}
