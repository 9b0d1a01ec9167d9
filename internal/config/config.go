package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings is an immutable snapshot of the configuration, taken once at
// startup and injected into the services that need it.
type Settings struct {
	LogLevel string

	// Destination is the fixed point the whole application is built around.
	DestinationLat  float64
	DestinationLng  float64
	DefaultZoom     int
	CloseZoom       int
	SearchZoom      int
	MinZoom         int
	MaxZoom         int
	DefaultLanguage string

	// NearRadiusMeters is the distance from the destination within which a
	// live user location is considered worth rendering.
	NearRadiusMeters float64

	// Accuracy circle clamp bounds, meters.
	AccuracyMinMeters float64
	AccuracyMaxMeters float64

	// Geolocation acquisition.
	LocateTimeout      time.Duration
	SensorTimeout      time.Duration
	SensorMaxAge       time.Duration
	SensorHighAccuracy bool

	// Tile endpoints.
	TileStandardURL  string
	TileDarkURL      string
	TileSatelliteURL string
	RadarURLTemplate string
	RadarBucket      time.Duration
	RadarRefresh     time.Duration

	// Search.
	SearchMinQueryLen int
	SearchMaxResults  int
	SearchDebounce    time.Duration
	PopularSearches   []string

	// Remote engine.
	EngineType   string
	EngineURL    string
	EngineSecret string

	// CatalogPath is the venue database file. Empty means in-memory.
	CatalogPath string

	// Telemetry.
	TelemetryEnabled     bool
	TelemetryService     string
	TelemetryInterval    time.Duration
	TelemetryMetricsFile string
}

// Load reads configuration from an optional JSON file in configDir and sets
// default values for everything. A missing config file is not an error; the
// defaults describe a complete, working setup.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("destination.lat", 20.2114)
	viper.SetDefault("destination.lng", -87.4654)
	viper.SetDefault("destination.defaultZoom", 14)
	viper.SetDefault("destination.closeZoom", 16)
	viper.SetDefault("destination.searchZoom", 17)
	viper.SetDefault("destination.minZoom", 3)
	viper.SetDefault("destination.maxZoom", 19)
	viper.SetDefault("destination.defaultLanguage", "en")
	viper.SetDefault("destination.nearRadiusMeters", 30000.0)

	viper.SetDefault("location.accuracyMinMeters", 10.0)
	viper.SetDefault("location.accuracyMaxMeters", 500.0)
	viper.SetDefault("location.acquireTimeoutSeconds", 5)
	viper.SetDefault("location.sensorTimeoutSeconds", 10)
	viper.SetDefault("location.sensorMaxAgeSeconds", 30)
	viper.SetDefault("location.highAccuracy", true)

	viper.SetDefault("tiles.standard", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	viper.SetDefault("tiles.dark", "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png")
	viper.SetDefault("tiles.satellite", "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}")
	viper.SetDefault("tiles.radar", "https://tilecache.rainviewer.com/v2/radar/{t}/256/{z}/{x}/{y}/2/1_1.png")
	viper.SetDefault("tiles.radarBucketSeconds", 600)
	viper.SetDefault("tiles.radarRefreshSeconds", 600)

	viper.SetDefault("search.minQueryLen", 2)
	viper.SetDefault("search.maxResults", 8)
	viper.SetDefault("search.debounceMillis", 250)
	viper.SetDefault("search.popular", []string{
		"beach clubs", "cenotes", "restaurants", "ruins", "cafes",
	})

	viper.SetDefault("engine.type", "memory")
	viper.SetDefault("engine.url", "ws://localhost:8080/map")
	viper.SetDefault("engine.secret", "")

	viper.SetDefault("catalog.path", "")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.serviceName", "mapkit")
	viper.SetDefault("telemetry.intervalSeconds", 60)
	viper.SetDefault("telemetry.metricsFile", "mapkit-metrics.json")

	viper.SetConfigName("mapkit.cfg")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Snapshot returns the current configuration as a Settings value.
func Snapshot() Settings {
	return Settings{
		LogLevel: viper.GetString("logLevel"),

		DestinationLat:  viper.GetFloat64("destination.lat"),
		DestinationLng:  viper.GetFloat64("destination.lng"),
		DefaultZoom:     viper.GetInt("destination.defaultZoom"),
		CloseZoom:       viper.GetInt("destination.closeZoom"),
		SearchZoom:      viper.GetInt("destination.searchZoom"),
		MinZoom:         viper.GetInt("destination.minZoom"),
		MaxZoom:         viper.GetInt("destination.maxZoom"),
		DefaultLanguage: viper.GetString("destination.defaultLanguage"),

		NearRadiusMeters: viper.GetFloat64("destination.nearRadiusMeters"),

		AccuracyMinMeters: viper.GetFloat64("location.accuracyMinMeters"),
		AccuracyMaxMeters: viper.GetFloat64("location.accuracyMaxMeters"),

		LocateTimeout:      time.Duration(viper.GetInt("location.acquireTimeoutSeconds")) * time.Second,
		SensorTimeout:      time.Duration(viper.GetInt("location.sensorTimeoutSeconds")) * time.Second,
		SensorMaxAge:       time.Duration(viper.GetInt("location.sensorMaxAgeSeconds")) * time.Second,
		SensorHighAccuracy: viper.GetBool("location.highAccuracy"),

		TileStandardURL:  viper.GetString("tiles.standard"),
		TileDarkURL:      viper.GetString("tiles.dark"),
		TileSatelliteURL: viper.GetString("tiles.satellite"),
		RadarURLTemplate: viper.GetString("tiles.radar"),
		RadarBucket:      time.Duration(viper.GetInt("tiles.radarBucketSeconds")) * time.Second,
		RadarRefresh:     time.Duration(viper.GetInt("tiles.radarRefreshSeconds")) * time.Second,

		SearchMinQueryLen: viper.GetInt("search.minQueryLen"),
		SearchMaxResults:  viper.GetInt("search.maxResults"),
		SearchDebounce:    time.Duration(viper.GetInt("search.debounceMillis")) * time.Millisecond,
		PopularSearches:   viper.GetStringSlice("search.popular"),

		EngineType:   viper.GetString("engine.type"),
		EngineURL:    viper.GetString("engine.url"),
		EngineSecret: viper.GetString("engine.secret"),

		CatalogPath: viper.GetString("catalog.path"),

		TelemetryEnabled:     viper.GetBool("telemetry.enabled"),
		TelemetryService:     viper.GetString("telemetry.serviceName"),
		TelemetryInterval:    time.Duration(viper.GetInt("telemetry.intervalSeconds")) * time.Second,
		TelemetryMetricsFile: viper.GetString("telemetry.metricsFile"),
	}
}
