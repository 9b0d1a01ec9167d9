package venue

import "sync"

// FavoriteSet holds the ids of favorited venues. The map core only reads it;
// writes route through the external favorites provider.
type FavoriteSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewFavoriteSet creates a FavoriteSet seeded with the given ids.
func NewFavoriteSet(ids ...string) *FavoriteSet {
	s := &FavoriteSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether the venue id is favorited.
func (s *FavoriteSet) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Replace swaps the whole set for a new one.
func (s *FavoriteSet) Replace(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	s.mu.Lock()
	s.ids = next
	s.mu.Unlock()
}

// Len returns the number of favorited venues.
func (s *FavoriteSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
