package catalog

import (
	"sync/atomic"
	"time"
)

// Store holds the active catalog. Readers never block; Swap replaces the
// whole catalog at once.
type Store struct {
	current  atomic.Pointer[Catalog]
	loadedAt atomic.Int64
}

// NewStore creates a store serving c.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.Swap(c)
	return s
}

// Current returns the active catalog.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap installs c and returns the catalog it replaced.
func (s *Store) Swap(c *Catalog) *Catalog {
	s.loadedAt.Store(time.Now().UnixNano())
	return s.current.Swap(c)
}

// LoadedAt reports when the active catalog was installed.
func (s *Store) LoadedAt() time.Time {
	return time.Unix(0, s.loadedAt.Load())
}
