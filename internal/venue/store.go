package venue

import "sync"

// Store holds the current venue snapshot, favorites, and language, and
// notifies subscribers whenever any of them changes. It is the boundary
// between the external venue/favorites providers and the map core.
type Store struct {
	mu        sync.RWMutex
	venues    map[Category][]Venue
	favorites *FavoriteSet
	language  string
	subs      []func()
}

// NewStore creates an empty Store with the given initial language.
func NewStore(language string) *Store {
	return &Store{
		venues:    make(map[Category][]Venue),
		favorites: NewFavoriteSet(),
		language:  language,
	}
}

// Subscribe registers fn to run after every change. Returns a cancel func.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.subs[idx] = nil
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		if fn != nil {
			fn()
		}
	}
}

// SetVenues replaces the venue list for one category.
func (s *Store) SetVenues(cat Category, venues []Venue) {
	s.mu.Lock()
	s.venues[cat] = venues
	s.mu.Unlock()
	s.notify()
}

// Venues returns the venue list for one category.
func (s *Store) Venues(cat Category) []Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.venues[cat]
}

// AllVenues returns every venue across all categories in category order.
func (s *Store) AllVenues() []Venue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []Venue
	for _, cat := range Categories {
		all = append(all, s.venues[cat]...)
	}
	return all
}

// Favorites returns the favorite set.
func (s *Store) Favorites() *FavoriteSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorites
}

// SetFavorites replaces the favorited venue ids.
func (s *Store) SetFavorites(ids []string) {
	s.mu.RLock()
	favs := s.favorites
	s.mu.RUnlock()
	favs.Replace(ids)
	s.notify()
}

// Language returns the current display language.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetLanguage changes the display language.
func (s *Store) SetLanguage(lang string) {
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	s.notify()
}
