// Package search implements the in-memory, debounced, ranked place search
// that feeds fly-to navigation and the host selection callback.
package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/vivatulum/mapkit/internal/venue"
)

// Entry is one searchable venue with its precomputed lowercase haystack.
type Entry struct {
	Venue    venue.Venue
	haystack string
}

// Index is the in-memory search index over the combined venue set.
type Index struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild replaces the index contents. Called whenever the venue set,
// language, or favorites change. Entry order follows the input order, which
// keeps ranking ties stable.
func (i *Index) Rebuild(venues []venue.Venue, lang, fallbackLang string) {
	entries := make([]Entry, 0, len(venues))
	for _, v := range venues {
		hay := strings.ToLower(strings.Join([]string{
			v.Name,
			v.Category.Label(lang),
			v.Description(lang, fallbackLang),
		}, " "))
		entries = append(entries, Entry{Venue: v, haystack: hay})
	}

	i.mu.Lock()
	i.entries = entries
	i.mu.Unlock()
}

// Bind builds the index from the store and keeps it synchronized: every
// venue, favorites, or language change triggers a rebuild so the haystack
// always reflects the current display language. Returns a cancel func.
func (i *Index) Bind(store *venue.Store, fallbackLang string) func() {
	rebuild := func() {
		i.Rebuild(store.AllVenues(), store.Language(), fallbackLang)
	}
	rebuild()
	return store.Subscribe(rebuild)
}

// Len returns the number of indexed venues.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Query returns up to max entries matching q, case-insensitive. Venues whose
// name starts with the query rank before plain substring matches; ties keep
// index order.
func (i *Index) Query(q string, max int) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type ranked struct {
		entry Entry
		rank  int
	}
	var matches []ranked
	for _, e := range i.entries {
		name := strings.ToLower(e.Venue.Name)
		switch {
		case strings.HasPrefix(name, q):
			matches = append(matches, ranked{entry: e, rank: 0})
		case strings.Contains(name, q), strings.Contains(e.haystack, q):
			matches = append(matches, ranked{entry: e, rank: 1})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].rank < matches[b].rank
	})

	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	out := make([]Entry, len(matches))
	for idx, m := range matches {
		out[idx] = m.entry
	}
	return out
}
