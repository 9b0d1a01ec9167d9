package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivatulum/mapkit/internal/venue"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	// Unique in-memory db per test so seeds don't leak between tests.
	require.NoError(t, m.Connect("file:"+t.Name()+"?mode=memory&cache=shared"))
	require.NoError(t, m.Setup())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_SetupSeedsOnce(t *testing.T) {
	m := testManager(t)

	venues, err := m.Venues()
	require.NoError(t, err)
	assert.NotEmpty(t, venues[venue.CategoryBeachClubs])
	assert.NotEmpty(t, venues[venue.CategoryCultural])

	// Second setup must not duplicate the seed data.
	require.NoError(t, m.Setup())
	again, err := m.Venues()
	require.NoError(t, err)
	assert.Equal(t, len(venues[venue.CategoryBeachClubs]), len(again[venue.CategoryBeachClubs]))
}

func TestManager_VenuesRoundTripDescriptions(t *testing.T) {
	m := testManager(t)

	require.NoError(t, m.SaveVenues([]venue.Venue{{
		ID: "test-1", Name: "Cenote Calavera", Category: venue.CategoryCultural,
		Lat: 20.2280, Lng: -87.4720, Rating: 4.3,
		Descriptions: map[string]string{"en": "Skull cenote", "es": "Cenote calavera"},
	}}))

	venues, err := m.Venues()
	require.NoError(t, err)

	var found *venue.Venue
	for i := range venues[venue.CategoryCultural] {
		if venues[venue.CategoryCultural][i].ID == "test-1" {
			found = &venues[venue.CategoryCultural][i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Cenote calavera", found.Description("es", "en"))
	assert.Equal(t, 4.3, found.Rating)
}

func TestManager_SaveVenuesUpserts(t *testing.T) {
	m := testManager(t)

	v := venue.Venue{ID: "up-1", Name: "Old Name", Category: venue.CategoryCafes, Lat: 20.21, Lng: -87.46}
	require.NoError(t, m.SaveVenues([]venue.Venue{v}))

	v.Name = "New Name"
	require.NoError(t, m.SaveVenues([]venue.Venue{v}))

	venues, err := m.Venues()
	require.NoError(t, err)

	names := map[string]string{}
	for _, cv := range venues[venue.CategoryCafes] {
		names[cv.ID] = cv.Name
	}
	assert.Equal(t, "New Name", names["up-1"])
}

func TestManager_Favorites(t *testing.T) {
	m := testManager(t)

	require.NoError(t, m.SetFavorite("azulik", true))
	require.NoError(t, m.SetFavorite("hartwood", true))
	require.NoError(t, m.SetFavorite("azulik", true), "re-favoriting is idempotent")

	ids, err := m.FavoriteIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"azulik", "hartwood"}, ids)

	require.NoError(t, m.SetFavorite("azulik", false))
	ids, err = m.FavoriteIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"hartwood"}, ids)
}
