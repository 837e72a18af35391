// Package drills holds the in-memory drill collection for a session.
//
// Drills are supplied by an external Loader (for example the Excel/CSV
// importer) and are immutable while loaded. Reloading replaces the whole
// collection; retention records for vanished keys live on in the ledger.
package drills

import (
	"fmt"
	"sort"

	"github.com/example/drillbot/pkg/models"
)

// Loader supplies an ordered set of drill identities with stable keys.
type Loader interface {
	Load() ([]models.Drill, error)
}

// Store is the in-memory drill collection. It is not safe for concurrent
// mutation; the session drives load and selection from a single goroutine.
type Store struct {
	drills []models.Drill
	byKey  map[string]models.Drill
}

// NewStore creates an empty drill store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]models.Drill)}
}

// Reload replaces the store contents with whatever the loader supplies.
// Duplicate keys keep the first occurrence. On loader failure the previous
// contents are left untouched.
func (s *Store) Reload(loader Loader) error {
	loaded, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load drills: %w", err)
	}

	drills := make([]models.Drill, 0, len(loaded))
	byKey := make(map[string]models.Drill, len(loaded))
	for _, d := range loaded {
		key := d.Key()
		if _, exists := byKey[key]; exists {
			continue
		}
		byKey[key] = d
		drills = append(drills, d)
	}

	s.drills = drills
	s.byKey = byKey
	return nil
}

// All returns the drills in load order. The returned slice is a copy.
func (s *Store) All() []models.Drill {
	out := make([]models.Drill, len(s.drills))
	copy(out, s.drills)
	return out
}

// Get returns the drill with the given key.
func (s *Store) Get(key string) (models.Drill, bool) {
	d, ok := s.byKey[key]
	return d, ok
}

// Has reports whether a drill with the given key is loaded.
func (s *Store) Has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// ByCategory returns all drills in the given category, in load order.
func (s *Store) ByCategory(category string) []models.Drill {
	var out []models.Drill
	for _, d := range s.drills {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range s.drills {
		if _, ok := seen[d.Category]; ok {
			continue
		}
		seen[d.Category] = struct{}{}
		out = append(out, d.Category)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of loaded drills.
func (s *Store) Len() int {
	return len(s.drills)
}
