// Package store holds the single in-memory slot for the most recently
// loaded publications catalog.
package store

import (
	"sync"
	"time"

	"github.com/schizo-studios/pubsite/internal/catalog"
)

// CatalogStore is a single-writer holder for the current catalog and its
// raw bytes. The snapshot is replaced wholesale so readers never observe a
// partial load; whichever load completes last wins.
type CatalogStore struct {
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	raw      []byte
	source   string
	loadedAt time.Time
}

func New() *CatalogStore {
	return &CatalogStore{}
}

// Replace swaps in a freshly loaded catalog.
func (s *CatalogStore) Replace(c *catalog.Catalog, raw []byte, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
	s.raw = raw
	s.source = source
	s.loadedAt = time.Now()
}

// Get returns the current catalog snapshot, if any load has succeeded.
func (s *CatalogStore) Get() (*catalog.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog, s.catalog != nil
}

// Raw returns the raw bytes of the current catalog document, as fetched.
func (s *CatalogStore) Raw() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw, s.raw != nil
}

// Info reports where and when the current snapshot was loaded.
func (s *CatalogStore) Info() (source string, loadedAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source, s.loadedAt, s.catalog != nil
}
