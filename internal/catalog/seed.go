package catalog

import "github.com/vivatulum/mapkit/internal/venue"

// seedVenues is the built-in venue dataset, loaded on first run.
var seedVenues = []venue.Venue{
	{
		ID: "papaya-playa", Name: "Papaya Playa Project", Category: venue.CategoryBeachClubs,
		Lat: 20.1958, Lng: -87.4550, Rating: 4.4,
		URL: "https://papayaplayaproject.com", Phone: "+52 984 116 3774",
		Descriptions: map[string]string{
			"en": "Beachfront club with cabanas and full-moon parties.",
			"es": "Club frente al mar con cabañas y fiestas de luna llena.",
		},
	},
	{
		ID: "azulik", Name: "Azulik", Category: venue.CategoryBeachClubs,
		Lat: 20.2070, Lng: -87.4620, Rating: 4.2,
		URL: "https://azulik.com",
		Descriptions: map[string]string{
			"en": "Treehouse eco resort and beach club in the jungle canopy.",
			"es": "Ecoresort de casas de árbol y club de playa entre la selva.",
		},
	},
	{
		ID: "hartwood", Name: "Hartwood", Category: venue.CategoryRestaurants,
		Lat: 20.1990, Lng: -87.4570, Rating: 4.6,
		URL: "https://hartwoodtulum.com",
		Descriptions: map[string]string{
			"en": "Wood-fired kitchen with daily changing local menu.",
			"es": "Cocina de leña con menú local que cambia a diario.",
		},
	},
	{
		ID: "arca", Name: "Arca", Category: venue.CategoryRestaurants,
		Lat: 20.1975, Lng: -87.4558, Rating: 4.5,
		Phone: "+52 984 112 5579",
		Descriptions: map[string]string{
			"en": "Open-fire contemporary Mexican dining under the trees.",
			"es": "Cocina mexicana contemporánea al fuego abierto bajo los árboles.",
		},
	},
	{
		ID: "kibok", Name: "Ki'bok Coffee", Category: venue.CategoryCafes,
		Lat: 20.2115, Lng: -87.4632, Rating: 4.5,
		Descriptions: map[string]string{
			"en": "Specialty coffee roasted in-house, jungle patio seating.",
			"es": "Café de especialidad tostado en casa, patio en la selva.",
		},
	},
	{
		ID: "babel-cafe", Name: "Babel Café", Category: venue.CategoryCafes,
		Lat: 20.2129, Lng: -87.4648, Rating: 4.4,
		Descriptions: map[string]string{
			"en": "Breakfast bowls and cold brew near the town center.",
			"es": "Bowls de desayuno y cold brew cerca del centro.",
		},
	},
	{
		ID: "tulum-ruins", Name: "Tulum Archaeological Zone", Category: venue.CategoryCultural,
		Lat: 20.2147, Lng: -87.4290, Rating: 4.7,
		URL: "https://www.inah.gob.mx/zonas/99-zona-arqueologica-de-tulum",
		Descriptions: map[string]string{
			"en": "Mayan walled city on the cliffs above the Caribbean.",
			"es": "Ciudad amurallada maya sobre los acantilados del Caribe.",
		},
	},
	{
		ID: "gran-cenote", Name: "Gran Cenote", Category: venue.CategoryCultural,
		Lat: 20.2467, Lng: -87.4640, Rating: 4.5,
		Descriptions: map[string]string{
			"en": "Crystal-clear cenote with caverns and turtles.",
			"es": "Cenote cristalino con cavernas y tortugas.",
		},
	},
}
