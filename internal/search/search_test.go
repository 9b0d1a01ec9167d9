package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivatulum/mapkit/internal/venue"
)

func testVenues() []venue.Venue {
	return []venue.Venue{
		{ID: "v1", Name: "Azulik", Category: venue.CategoryBeachClubs, Lat: 20.207, Lng: -87.462,
			Descriptions: map[string]string{"en": "Treehouse eco resort"}},
		{ID: "v2", Name: "Casa Azul", Category: venue.CategoryCafes, Lat: 20.211, Lng: -87.466,
			Descriptions: map[string]string{"en": "Blue house cafe"}},
		{ID: "v3", Name: "Hartwood", Category: venue.CategoryRestaurants, Lat: 20.199, Lng: -87.457,
			Descriptions: map[string]string{"en": "Wood-fired azul kitchen"}},
		{ID: "v4", Name: "Tulum Ruins", Category: venue.CategoryCultural, Lat: 20.2147, Lng: -87.4290,
			Descriptions: map[string]string{"en": "Mayan clifftop ruins"}},
	}
}

func builtIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex()
	idx.Rebuild(testVenues(), "en", "en")
	return idx
}

func TestIndex_Query_PrefixBeforeSubstring(t *testing.T) {
	idx := builtIndex(t)

	results := idx.Query("azul", 8)
	require.Len(t, results, 3)

	// "Azulik" is a name-prefix match and must sort first; the others match
	// by substring/haystack and keep input order.
	assert.Equal(t, "Azulik", results[0].Venue.Name)
	assert.Equal(t, "Casa Azul", results[1].Venue.Name)
	assert.Equal(t, "Hartwood", results[2].Venue.Name)
}

func TestIndex_Query_CaseInsensitive(t *testing.T) {
	idx := builtIndex(t)

	results := idx.Query("HARTWOOD", 8)
	require.Len(t, results, 1)
	assert.Equal(t, "v3", results[0].Venue.ID)
}

func TestIndex_Query_MatchesCategoryLabel(t *testing.T) {
	idx := builtIndex(t)

	results := idx.Query("cafe", 8)
	require.NotEmpty(t, results)
	assert.Equal(t, "Casa Azul", results[0].Venue.Name)
}

func TestIndex_Query_MaxResults(t *testing.T) {
	venues := make([]venue.Venue, 20)
	for i := range venues {
		venues[i] = venue.Venue{ID: string(rune('a' + i)), Name: "Playa Spot", Category: venue.CategoryBeachClubs}
	}
	idx := NewIndex()
	idx.Rebuild(venues, "en", "en")

	assert.Len(t, idx.Query("playa", 8), 8)
}

func TestIndex_Rebuild_LanguageChangesHaystack(t *testing.T) {
	idx := NewIndex()
	idx.Rebuild(testVenues(), "es", "en")

	// Spanish category label becomes searchable.
	results := idx.Query("cafetería", 8)
	require.Len(t, results, 1)
	assert.Equal(t, "Casa Azul", results[0].Venue.Name)
}

func TestIndex_Bind_FollowsStoreChanges(t *testing.T) {
	store := venue.NewStore("en")
	store.SetVenues(venue.CategoryCafes, []venue.Venue{
		{ID: "v2", Name: "Casa Azul", Category: venue.CategoryCafes, Lat: 20.211, Lng: -87.466,
			Descriptions: map[string]string{"en": "Blue house cafe"}},
	})

	idx := NewIndex()
	cancel := idx.Bind(store, "en")
	defer cancel()

	require.Len(t, idx.Query("cafe", 8), 1, "bind seeds the index immediately")
	require.Empty(t, idx.Query("cafetería", 8))

	// Switching the display language must swap the searchable category label.
	store.SetLanguage("es")
	results := idx.Query("cafetería", 8)
	require.Len(t, results, 1)
	assert.Equal(t, "Casa Azul", results[0].Venue.Name)

	// New venues become searchable without an explicit rebuild.
	store.SetVenues(venue.CategoryCultural, []venue.Venue{
		{ID: "v4", Name: "Tulum Ruins", Category: venue.CategoryCultural, Lat: 20.2147, Lng: -87.4290},
	})
	assert.Len(t, idx.Query("ruins", 8), 1)
}

func TestIndex_Bind_CancelStopsUpdates(t *testing.T) {
	store := venue.NewStore("en")
	store.SetVenues(venue.CategoryCafes, []venue.Venue{
		{ID: "v2", Name: "Casa Azul", Category: venue.CategoryCafes},
	})

	idx := NewIndex()
	cancel := idx.Bind(store, "en")
	cancel()

	store.SetLanguage("es")
	assert.Empty(t, idx.Query("cafetería", 8), "cancelled binding must not rebuild")
	assert.Len(t, idx.Query("cafe", 8), 1)
}

func testControl(idx *Index, cb Callbacks) *Control {
	return NewControl(idx, Config{
		MinQueryLen: 2,
		MaxResults:  8,
		Debounce:    5 * time.Millisecond,
		Popular:     []string{"beach clubs", "cenotes"},
		FlyToZoom:   17,
	}, cb)
}

func TestControl_ShortQueryShowsPopular(t *testing.T) {
	c := testControl(builtIndex(t), Callbacks{})
	defer c.Stop()

	c.Evaluate("a")

	assert.True(t, c.PopularActive())
	assert.Empty(t, c.Results())
	assert.Equal(t, []string{"beach clubs", "cenotes"}, c.Popular())
}

func TestControl_DebounceDiscardsSuperseded(t *testing.T) {
	c := testControl(builtIndex(t), Callbacks{})
	defer c.Stop()

	c.SetQuery("az")
	c.SetQuery("azu")
	c.SetQuery("hartw")

	assert.Eventually(t, func() bool {
		r := c.Results()
		return len(r) == 1 && r[0].Venue.Name == "Hartwood"
	}, time.Second, 2*time.Millisecond, "only the final keystroke should be evaluated")
}

func TestControl_MoveHighlightClamped(t *testing.T) {
	c := testControl(builtIndex(t), Callbacks{})
	defer c.Stop()

	c.Evaluate("azul") // 3 results
	require.Len(t, c.Results(), 3)

	c.MoveHighlight(1)
	assert.Equal(t, 0, c.Highlight())

	c.MoveHighlight(10)
	assert.Equal(t, 2, c.Highlight(), "clamped at last result")

	c.MoveHighlight(-10)
	assert.Equal(t, 0, c.Highlight(), "clamped at first result")
}

func TestControl_EnterSelectsHighlighted(t *testing.T) {
	var flew []float64
	var selected venue.Venue
	c := testControl(builtIndex(t), Callbacks{
		FlyTo:    func(lat, lng float64, zoom int) { flew = append(flew, lat, lng, float64(zoom)) },
		OnSelect: func(v venue.Venue) { selected = v },
	})
	defer c.Stop()

	c.Evaluate("azul")
	c.MoveHighlight(1) // highlight Azulik
	c.Enter()

	assert.Equal(t, "Azulik", c.Input(), "input text becomes the venue name")
	assert.False(t, c.Open())
	assert.Equal(t, "v1", selected.ID)
	require.Len(t, flew, 3, "exactly one FlyTo call")
	assert.Equal(t, 20.207, flew[0])
	assert.Equal(t, -87.462, flew[1])
	assert.Equal(t, 17.0, flew[2])
}

func TestControl_EnterWithoutHighlightIsPlainSearch(t *testing.T) {
	var plain string
	var flyCalls int
	c := testControl(builtIndex(t), Callbacks{
		FlyTo:         func(lat, lng float64, zoom int) { flyCalls++ },
		OnPlainSearch: func(q string) { plain = q },
	})
	defer c.Stop()

	c.SetQuery("cenote escondido")
	c.Evaluate("cenote escondido")
	c.Enter()

	assert.Equal(t, "cenote escondido", plain)
	assert.Equal(t, 0, flyCalls)
}

func TestControl_EscapeDismisses(t *testing.T) {
	c := testControl(builtIndex(t), Callbacks{})
	defer c.Stop()

	c.Evaluate("azul")
	require.True(t, c.Open())

	c.Escape()
	assert.False(t, c.Open())
	assert.Equal(t, -1, c.Highlight())
}

func TestControl_DismissOutside(t *testing.T) {
	c := testControl(builtIndex(t), Callbacks{})
	defer c.Stop()

	c.Evaluate("ruins")
	require.True(t, c.Open())

	c.DismissOutside()
	assert.False(t, c.Open())
}
