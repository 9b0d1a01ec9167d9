package venue

// Category identifies one of the venue groups the application renders.
type Category string

const (
	CategoryBeachClubs  Category = "beach_clubs"
	CategoryRestaurants Category = "restaurants"
	CategoryCafes       Category = "cafes"
	CategoryCultural    Category = "cultural"
)

// Categories lists every venue category in render order.
var Categories = []Category{
	CategoryBeachClubs,
	CategoryRestaurants,
	CategoryCafes,
	CategoryCultural,
}

// Label returns a human-readable label for the category in the given
// language. Unknown languages fall back to English.
func (c Category) Label(lang string) string {
	labels, ok := categoryLabels[lang]
	if !ok {
		labels = categoryLabels["en"]
	}
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

var categoryLabels = map[string]map[Category]string{
	"en": {
		CategoryBeachClubs:  "Beach club",
		CategoryRestaurants: "Restaurant",
		CategoryCafes:       "Cafe",
		CategoryCultural:    "Cultural site",
	},
	"es": {
		CategoryBeachClubs:  "Club de playa",
		CategoryRestaurants: "Restaurante",
		CategoryCafes:       "Cafetería",
		CategoryCultural:    "Sitio cultural",
	},
}

// Venue is an immutable snapshot of a point of interest. The map core never
// mutates venue content, only derives presentation from it.
type Venue struct {
	ID           string
	Name         string
	Lat          float64
	Lng          float64
	Category     Category
	Rating       float64 // 0 when unrated
	URL          string
	Phone        string
	Descriptions map[string]string // language code -> localized description
}

// Description returns the venue description for lang, falling back to
// fallbackLang and then to any available language. Missing descriptions
// default to the empty string.
func (v Venue) Description(lang, fallbackLang string) string {
	if d, ok := v.Descriptions[lang]; ok {
		return d
	}
	if d, ok := v.Descriptions[fallbackLang]; ok {
		return d
	}
	for _, d := range v.Descriptions {
		return d
	}
	return ""
}

// UserLocation is the device's best-known position. It is replaced wholesale
// on every sensor update and never partially mutated.
type UserLocation struct {
	Lat            float64
	Lng            float64
	AccuracyMeters float64
}
