// Package catalog persists the venue dataset and the user's favorites in a
// local SQLite database and loads them into the in-memory venue store.
package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vivatulum/mapkit/internal/logging"
	"github.com/vivatulum/mapkit/internal/venue"
)

// Record is one venue row. Localized descriptions are stored as a JSON
// object keyed by language code.
type Record struct {
	ID           string `gorm:"primarykey"`
	Name         string `gorm:"index"`
	Category     string `gorm:"index"`
	Lat          float64
	Lng          float64
	Rating       float64
	URL          string
	Phone        string
	Descriptions datatypes.JSON
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Favorite is one favorited venue id.
type Favorite struct {
	VenueID   string `gorm:"primarykey"`
	CreatedAt time.Time
}

// Manager handles the catalog database connection and operations.
type Manager struct {
	DB  *gorm.DB
	log logging.Logger
}

// NewManager creates an unconnected catalog manager.
func NewManager(log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{log: log}
}

// Connect opens the SQLite database at path. An empty path uses a shared
// in-memory database.
func (m *Manager) Connect(path string) error {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
		m.log.Info("using in-memory catalog database")
	} else {
		m.log.Info("using catalog database", "path", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("opening catalog db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return fmt.Errorf("setting pragma: %w", err)
		}
	}

	m.DB = db
	return nil
}

// Setup migrates the schema and seeds the venue table when it is empty.
func (m *Manager) Setup() error {
	if m.DB == nil {
		return fmt.Errorf("catalog not connected")
	}

	if err := m.DB.AutoMigrate(&Record{}, &Favorite{}); err != nil {
		return fmt.Errorf("migrating catalog schema: %w", err)
	}

	var count int64
	if err := m.DB.Model(&Record{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting venues: %w", err)
	}
	if count > 0 {
		return nil
	}

	m.log.Info("seeding venue catalog", "venues", len(seedVenues))
	records := make([]Record, 0, len(seedVenues))
	for _, v := range seedVenues {
		rec, err := toRecord(v)
		if err != nil {
			return fmt.Errorf("encoding seed venue %s: %w", v.ID, err)
		}
		records = append(records, rec)
	}
	if err := m.DB.Create(&records).Error; err != nil {
		return fmt.Errorf("seeding venues: %w", err)
	}
	return nil
}

// Venues loads every venue grouped by category.
func (m *Manager) Venues() (map[venue.Category][]venue.Venue, error) {
	var records []Record
	if err := m.DB.Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("loading venues: %w", err)
	}

	out := make(map[venue.Category][]venue.Venue)
	for _, rec := range records {
		v, err := fromRecord(rec)
		if err != nil {
			m.log.Warn("skipping malformed venue row", "id", rec.ID, "error", err)
			continue
		}
		out[v.Category] = append(out[v.Category], v)
	}
	return out, nil
}

// SaveVenues upserts the given venues.
func (m *Manager) SaveVenues(venues []venue.Venue) error {
	for _, v := range venues {
		rec, err := toRecord(v)
		if err != nil {
			return fmt.Errorf("encoding venue %s: %w", v.ID, err)
		}
		if err := m.DB.Save(&rec).Error; err != nil {
			return fmt.Errorf("saving venue %s: %w", v.ID, err)
		}
	}
	return nil
}

// FavoriteIDs returns every favorited venue id.
func (m *Manager) FavoriteIDs() ([]string, error) {
	var favs []Favorite
	if err := m.DB.Order("created_at").Find(&favs).Error; err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}
	ids := make([]string, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.VenueID)
	}
	return ids, nil
}

// SetFavorite adds or removes a favorite.
func (m *Manager) SetFavorite(venueID string, favorite bool) error {
	if favorite {
		f := Favorite{VenueID: venueID, CreatedAt: time.Now()}
		if err := m.DB.Where(Favorite{VenueID: venueID}).FirstOrCreate(&f).Error; err != nil {
			return fmt.Errorf("adding favorite %s: %w", venueID, err)
		}
		return nil
	}
	if err := m.DB.Delete(&Favorite{VenueID: venueID}).Error; err != nil {
		return fmt.Errorf("removing favorite %s: %w", venueID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(v venue.Venue) (Record, error) {
	desc, err := json.Marshal(v.Descriptions)
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:           v.ID,
		Name:         v.Name,
		Category:     string(v.Category),
		Lat:          v.Lat,
		Lng:          v.Lng,
		Rating:       v.Rating,
		URL:          v.URL,
		Phone:        v.Phone,
		Descriptions: datatypes.JSON(desc),
	}, nil
}

func fromRecord(rec Record) (venue.Venue, error) {
	var desc map[string]string
	if len(rec.Descriptions) > 0 {
		if err := json.Unmarshal(rec.Descriptions, &desc); err != nil {
			return venue.Venue{}, err
		}
	}
	return venue.Venue{
		ID:           rec.ID,
		Name:         rec.Name,
		Category:     venue.Category(rec.Category),
		Lat:          rec.Lat,
		Lng:          rec.Lng,
		Rating:       rec.Rating,
		URL:          rec.URL,
		Phone:        rec.Phone,
		Descriptions: desc,
	}, nil
}
