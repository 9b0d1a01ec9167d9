// Command mapkit runs the map core headless with an interactive prompt, for
// development against either the in-process memory engine or a remote
// WebSocket-streaming renderer.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vivatulum/mapkit/internal/catalog"
	"github.com/vivatulum/mapkit/internal/config"
	"github.com/vivatulum/mapkit/internal/engine"
	"github.com/vivatulum/mapkit/internal/engine/memory"
	"github.com/vivatulum/mapkit/internal/engine/remote"
	"github.com/vivatulum/mapkit/internal/geo"
	"github.com/vivatulum/mapkit/internal/layers"
	"github.com/vivatulum/mapkit/internal/locate"
	"github.com/vivatulum/mapkit/internal/logging"
	"github.com/vivatulum/mapkit/internal/otel"
	"github.com/vivatulum/mapkit/internal/platform"
	"github.com/vivatulum/mapkit/internal/search"
	"github.com/vivatulum/mapkit/internal/surface"
	"github.com/vivatulum/mapkit/internal/tiles"
	"github.com/vivatulum/mapkit/internal/venue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load("."); err != nil {
		return err
	}
	settings := config.Snapshot()

	zl := logging.Setup(os.Stderr, settings.LogLevel, true)
	log := logging.NewZerologLogger(zl)
	log.Info("starting mapkit", "engine", settings.EngineType)

	if settings.TelemetryEnabled {
		metricsFile, err := os.Create(settings.TelemetryMetricsFile)
		if err != nil {
			return err
		}
		defer metricsFile.Close()

		telemetry, err := otel.New(otel.Config{
			Enabled:      true,
			ServiceName:  settings.TelemetryService,
			Interval:     settings.TelemetryInterval,
			MetricWriter: metricsFile,
		})
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Warn("telemetry shutdown failed", "error", err)
			}
		}()
	}

	cat := catalog.NewManager(log)
	if err := cat.Connect(settings.CatalogPath); err != nil {
		return err
	}
	defer cat.Close()
	if err := cat.Setup(); err != nil {
		return err
	}

	store := venue.NewStore(settings.DefaultLanguage)
	byCategory, err := cat.Venues()
	if err != nil {
		return err
	}
	for category, venues := range byCategory {
		store.SetVenues(category, venues)
	}
	favorites, err := cat.FavoriteIDs()
	if err != nil {
		return err
	}
	store.SetFavorites(favorites)

	var eng engine.Engine
	switch settings.EngineType {
	case "remote":
		eng = remote.New(remote.Config{URL: settings.EngineURL, Secret: settings.EngineSecret}, log)
	default:
		eng = memory.New()
	}

	sensorOpts := locate.Options{
		HighAccuracy: settings.SensorHighAccuracy,
		MaxAge:       settings.SensorMaxAge,
		Timeout:      settings.SensorTimeout,
	}
	locator := locate.New(nil, sensorOpts, settings.LocateTimeout, log)

	composer := layers.NewComposer()

	ctrl, err := surface.New(
		surface.Config{
			Destination:      geo.LatLng{Lat: settings.DestinationLat, Lng: settings.DestinationLng},
			DefaultZoom:      settings.DefaultZoom,
			CloseZoom:        settings.CloseZoom,
			NearRadiusMeters: settings.NearRadiusMeters,
			AccuracyMin:      settings.AccuracyMinMeters,
			AccuracyMax:      settings.AccuracyMaxMeters,
			DefaultLanguage:  settings.DefaultLanguage,
			DestinationName:  "Tulum",
			Tiles: tiles.Templates{
				Standard:    settings.TileStandardURL,
				Dark:        settings.TileDarkURL,
				Satellite:   settings.TileSatelliteURL,
				Radar:       settings.RadarURLTemplate,
				RadarBucket: settings.RadarBucket,
			},
			RadarRefresh: settings.RadarRefresh,
		},
		eng, locator, composer, store, platform.Static{Value: platform.Other}, log,
		surface.Callbacks{
			OnPlaceSelect: func(v venue.Venue) {
				fmt.Printf("selected %s (%s)\n", v.Name, v.Category.Label(store.Language()))
			},
		},
	)
	if err != nil {
		return err
	}

	handle, err := ctrl.Mount()
	if err != nil {
		return err
	}
	defer ctrl.Unmount()

	index := search.NewIndex()
	unbind := index.Bind(store, settings.DefaultLanguage)
	defer unbind()
	searcher := search.NewControl(index, search.Config{
		MinQueryLen: settings.SearchMinQueryLen,
		MaxResults:  settings.SearchMaxResults,
		Debounce:    settings.SearchDebounce,
		Popular:     settings.PopularSearches,
		FlyToZoom:   settings.SearchZoom,
	}, search.Callbacks{
		OnSelect: func(v venue.Venue) {
			if err := handle.ShowPlace(v, settings.SearchZoom); err != nil {
				log.Error("show place failed", "error", err)
			}
		},
	})
	defer searcher.Stop()

	return prompt(handle, composer, store, cat, searcher, settings, log)
}

func prompt(
	handle *surface.Handle,
	composer *layers.Composer,
	store *venue.Store,
	cat *catalog.Manager,
	searcher *search.Control,
	settings config.Settings,
	log logging.Logger,
) error {
	fmt.Println("commands: locate | reset | fly <lat> <lng> <zoom> | toggle <layer> | tile <lat> <lng> <zoom> | fav <id> | unfav <id> | search <text> | lang <code> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil

		case "locate":
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := handle.LocateUser(ctx)
			cancel()
			if err != nil {
				log.Error("locate failed", "error", err)
			}

		case "reset":
			if err := handle.ResetView(); err != nil {
				log.Error("reset failed", "error", err)
			}

		case "fly":
			if len(fields) != 4 {
				fmt.Println("usage: fly <lat> <lng> <zoom>")
				continue
			}
			lat, err1 := strconv.ParseFloat(fields[1], 64)
			lng, err2 := strconv.ParseFloat(fields[2], 64)
			zoom, err3 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil || err3 != nil {
				fmt.Println("usage: fly <lat> <lng> <zoom>")
				continue
			}
			if err := handle.FlyTo(lat, lng, zoom); err != nil {
				log.Error("fly failed", "error", err)
			}

		case "toggle":
			if len(fields) != 2 {
				fmt.Println("usage: toggle <layer>")
				continue
			}
			composer.Toggle(layers.LayerID(fields[1]))
			fmt.Printf("layers: %+v\n", composer.State())

		case "tile":
			if len(fields) != 4 {
				fmt.Println("usage: tile <lat> <lng> <zoom>")
				continue
			}
			lat, err1 := strconv.ParseFloat(fields[1], 64)
			lng, err2 := strconv.ParseFloat(fields[2], 64)
			zoom, err3 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil || err3 != nil {
				fmt.Println("usage: tile <lat> <lng> <zoom>")
				continue
			}
			tl := geo.TileAt(geo.LatLng{Lat: lat, Lng: lng}, zoom)
			fmt.Printf("tile z=%d x=%d y=%d\n", tl.Zoom, tl.X, tl.Y)
			fmt.Println("  standard:", tiles.Expand(settings.TileStandardURL, tl))
			radar := tiles.Templates{Radar: settings.RadarURLTemplate, RadarBucket: settings.RadarBucket}
			fmt.Println("  radar:   ", tiles.Expand(radar.RadarURL(time.Now()), tl))

		case "fav", "unfav":
			if len(fields) != 2 {
				fmt.Println("usage:", fields[0], "<venue-id>")
				continue
			}
			if err := cat.SetFavorite(fields[1], fields[0] == "fav"); err != nil {
				log.Error("favorite update failed", "error", err)
				continue
			}
			ids, err := cat.FavoriteIDs()
			if err != nil {
				log.Error("favorite reload failed", "error", err)
				continue
			}
			store.SetFavorites(ids)

		case "lang":
			if len(fields) != 2 {
				fmt.Println("usage: lang <code>")
				continue
			}
			store.SetLanguage(fields[1])

		case "search":
			query := strings.Join(fields[1:], " ")
			searcher.Evaluate(query)
			results := searcher.Results()
			if searcher.PopularActive() {
				fmt.Println("popular:", strings.Join(searcher.Popular(), ", "))
				continue
			}
			for i, e := range results {
				fmt.Printf("%d. %s (%s)\n", i+1, e.Venue.Name, e.Venue.Category.Label(store.Language()))
			}
			if len(results) > 0 {
				searcher.MoveHighlight(1)
				searcher.Enter()
			}

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
