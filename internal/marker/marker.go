package marker

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/platform"
	"github.com/vivatulum/mapkit/internal/util"
	"github.com/vivatulum/mapkit/internal/venue"
)

// IconID selects the pin artwork for a marker.
type IconID string

const (
	IconBeachClub   IconID = "beach-club"
	IconRestaurant  IconID = "restaurant"
	IconCafe        IconID = "cafe"
	IconCultural    IconID = "cultural"
	IconFavorite    IconID = "favorite"
	IconDestination IconID = "destination"
)

// Viewer carries the presentation context a marker is built for.
type Viewer struct {
	Language        string
	DefaultLanguage string
	Platform        platform.Platform
	Location        *venue.UserLocation // nil when unknown
	Favorite        bool
}

// Marker is a renderable pin plus its popup content.
type Marker struct {
	ID        string
	Lat       float64
	Lng       float64
	Icon      IconID
	Title     string
	PopupHTML string
}

// Build turns a venue plus viewer context into a renderable marker. Venues
// with non-finite or out-of-range coordinates are rejected with
// geo.ErrInvalidCoordinates and should simply be skipped by the caller.
func Build(v venue.Venue, viewer Viewer) (Marker, error) {
	ll := geo.LatLng{Lat: v.Lat, Lng: v.Lng}
	if !ll.Valid() {
		return Marker{}, fmt.Errorf("venue %s: %w", v.ID, geo.ErrInvalidCoordinates)
	}

	return Marker{
		ID:        v.ID,
		Lat:       v.Lat,
		Lng:       v.Lng,
		Icon:      iconFor(v.Category, viewer.Favorite),
		Title:     v.Name,
		PopupHTML: popupHTML(v, viewer),
	}, nil
}

func iconFor(cat venue.Category, favorite bool) IconID {
	if favorite {
		return IconFavorite
	}
	switch cat {
	case venue.CategoryBeachClubs:
		return IconBeachClub
	case venue.CategoryRestaurants:
		return IconRestaurant
	case venue.CategoryCafes:
		return IconCafe
	case venue.CategoryCultural:
		return IconCultural
	}
	return IconDestination
}

// maxDescriptionRunes caps the popup description so an oversized venue text
// cannot blow up the popup layout.
const maxDescriptionRunes = 200

// popupHTML renders the popup body. All interpolated text is HTML-escaped so
// venue content containing reserved characters cannot break the markup.
func popupHTML(v venue.Venue, viewer Viewer) string {
	var b strings.Builder

	b.WriteString(`<div class="venue-popup">`)
	b.WriteString(`<h3>` + html.EscapeString(v.Name) + `</h3>`)

	if v.Rating > 0 {
		fmt.Fprintf(&b, `<div class="rating">★ %.1f</div>`, v.Rating)
	}

	if desc := v.Description(viewer.Language, viewer.DefaultLanguage); desc != "" {
		b.WriteString(`<p>` + html.EscapeString(util.Truncate(desc, maxDescriptionRunes)) + `</p>`)
	}

	if viewer.Location != nil {
		d := geo.Distance(
			geo.LatLng{Lat: viewer.Location.Lat, Lng: viewer.Location.Lng},
			geo.LatLng{Lat: v.Lat, Lng: v.Lng},
		)
		b.WriteString(`<div class="distance">` + util.FormatDistance(d) + `</div>`)
	}

	b.WriteString(`<div class="actions">`)
	if v.URL != "" {
		b.WriteString(`<a href="` + html.EscapeString(v.URL) + `" target="_blank">Website</a>`)
	}
	if v.Phone != "" {
		b.WriteString(`<a href="tel:` + html.EscapeString(v.Phone) + `">Call</a>`)
		if digits := util.DigitsOnly(v.Phone); digits != "" {
			b.WriteString(`<a href="https://wa.me/` + digits + `" target="_blank">WhatsApp</a>`)
		}
	}
	nav := navigationURL(viewer.Platform, v.Lat, v.Lng, v.Name)
	b.WriteString(`<a href="` + html.EscapeString(nav) + `">Navigate</a>`)
	b.WriteString(`</div></div>`)

	return b.String()
}

// navigationURL builds the platform-conditional directions deep link.
func navigationURL(p platform.Platform, lat, lng float64, name string) string {
	label := url.QueryEscape(name)
	switch p {
	case platform.IOS:
		return fmt.Sprintf("maps://?daddr=%f,%f&q=%s", lat, lng, label)
	case platform.Android:
		return fmt.Sprintf("google.navigation:q=%f,%f&label=%s", lat, lng, label)
	default:
		return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%f%%2C%f&q=%s", lat, lng, label)
	}
}
