package marker

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/platform"
	"github.com/vivatulum/mapkit/internal/venue"
)

func testVenue() venue.Venue {
	return venue.Venue{
		ID:       "bc1",
		Name:     "Papaya Playa",
		Lat:      20.1984,
		Lng:      -87.4598,
		Category: venue.CategoryBeachClubs,
		Rating:   4.5,
		URL:      "https://example.com/papaya",
		Phone:    "+52 984 123 4567",
		Descriptions: map[string]string{
			"en": "Beachfront club & bar",
			"es": "Club frente al mar",
		},
	}
}

func testViewer() Viewer {
	return Viewer{Language: "en", DefaultLanguage: "en", Platform: platform.Other}
}

func TestBuild_PopupTruncatesLongDescription(t *testing.T) {
	v := testVenue()
	v.Descriptions = map[string]string{"en": strings.Repeat("beachfront ", 60)}

	m, err := Build(v, testViewer())
	require.NoError(t, err)

	assert.NotContains(t, m.PopupHTML, v.Descriptions["en"], "full text must not appear")
	assert.Contains(t, m.PopupHTML, "…")
}

func TestBuild_IconByCategory(t *testing.T) {
	tests := []struct {
		cat  venue.Category
		want IconID
	}{
		{venue.CategoryBeachClubs, IconBeachClub},
		{venue.CategoryRestaurants, IconRestaurant},
		{venue.CategoryCafes, IconCafe},
		{venue.CategoryCultural, IconCultural},
	}
	for _, tt := range tests {
		v := testVenue()
		v.Category = tt.cat
		m, err := Build(v, testViewer())
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Icon)
	}
}

func TestBuild_FavoriteIconOverridesCategory(t *testing.T) {
	viewer := testViewer()
	viewer.Favorite = true

	m, err := Build(testVenue(), viewer)
	require.NoError(t, err)
	assert.Equal(t, IconFavorite, m.Icon)
}

func TestBuild_InvalidCoordinatesRejected(t *testing.T) {
	v := testVenue()
	v.Lat = math.NaN()

	_, err := Build(v, testViewer())
	require.Error(t, err)
	assert.True(t, errors.Is(err, geo.ErrInvalidCoordinates))
}

func TestBuild_PopupEscapesVenueContent(t *testing.T) {
	v := testVenue()
	v.Name = `<script>alert("x")</script>`
	v.Descriptions = map[string]string{"en": `a & b < c`}

	m, err := Build(v, testViewer())
	require.NoError(t, err)

	assert.NotContains(t, m.PopupHTML, "<script>")
	assert.Contains(t, m.PopupHTML, "&lt;script&gt;")
	assert.Contains(t, m.PopupHTML, "a &amp; b &lt; c")
}

func TestBuild_PopupLocalizedDescription(t *testing.T) {
	viewer := testViewer()
	viewer.Language = "es"

	m, err := Build(testVenue(), viewer)
	require.NoError(t, err)
	assert.Contains(t, m.PopupHTML, "Club frente al mar")

	viewer.Language = "de" // no German description, fall back to default
	m, err = Build(testVenue(), viewer)
	require.NoError(t, err)
	assert.Contains(t, m.PopupHTML, "Beachfront club")
}

func TestBuild_ActionLinksConditional(t *testing.T) {
	v := testVenue()
	v.URL = ""
	v.Phone = ""

	m, err := Build(v, testViewer())
	require.NoError(t, err)

	assert.NotContains(t, m.PopupHTML, "Website")
	assert.NotContains(t, m.PopupHTML, "tel:")
	assert.NotContains(t, m.PopupHTML, "wa.me")
	assert.Contains(t, m.PopupHTML, "Navigate", "navigate link is always present")
}

func TestBuild_WhatsAppLinkUsesDigitsOnly(t *testing.T) {
	m, err := Build(testVenue(), testViewer())
	require.NoError(t, err)
	assert.Contains(t, m.PopupHTML, "https://wa.me/529841234567")
}

func TestBuild_DistanceAnnotation(t *testing.T) {
	viewer := testViewer()
	viewer.Location = &venue.UserLocation{Lat: 20.2114, Lng: -87.4654, AccuracyMeters: 20}

	m, err := Build(testVenue(), viewer)
	require.NoError(t, err)
	assert.Contains(t, m.PopupHTML, "km away")

	viewer.Location = nil
	m, err = Build(testVenue(), viewer)
	require.NoError(t, err)
	assert.NotContains(t, m.PopupHTML, "away")
}

func TestNavigationURL_PlatformConditional(t *testing.T) {
	ios := navigationURL(platform.IOS, 20.1984, -87.4598, "Papaya Playa")
	assert.True(t, strings.HasPrefix(ios, "maps://"), "got %s", ios)
	assert.Contains(t, ios, "Papaya+Playa")

	android := navigationURL(platform.Android, 20.1984, -87.4598, "Papaya Playa")
	assert.True(t, strings.HasPrefix(android, "google.navigation:"), "got %s", android)

	web := navigationURL(platform.Other, 20.1984, -87.4598, "Papaya Playa")
	assert.True(t, strings.HasPrefix(web, "https://www.google.com/maps/dir/"), "got %s", web)
	assert.Contains(t, web, "20.198400%2C-87.459800")
}
