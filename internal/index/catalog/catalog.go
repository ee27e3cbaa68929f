// Package catalog holds the read-optimized listing copies derived from
// the canonical store, plus the active+approved composite id set that
// serves filters-only scans.
package catalog

import (
	"sort"
	"sync"

	"github.com/geodex-io/geodex/internal/domain/listing"
)

// Catalog is the in-memory listing table. Reads return value copies,
// so in-flight queries never observe a half-updated listing.
type Catalog struct {
	mu        sync.RWMutex
	listings  map[string]listing.Listing
	composite map[string]struct{}
	version   uint64
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		listings:  make(map[string]listing.Listing),
		composite: make(map[string]struct{}),
	}
}

// Put stores a listing copy and maintains the composite set.
func (c *Catalog) Put(l listing.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listings[l.ID()] = l
	if l.Indexable() {
		c.composite[l.ID()] = struct{}{}
	} else {
		delete(c.composite, l.ID())
	}
	c.version++
}

// Delete removes a listing. Returns false if absent.
func (c *Catalog) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.listings[id]; !ok {
		return false
	}
	delete(c.listings, id)
	delete(c.composite, id)
	c.version++
	return true
}

// Get returns a snapshot copy of a listing.
func (c *Catalog) Get(id string) (listing.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.listings[id]
	return l, ok
}

// CompositeIDs returns the active+approved id set in sorted order.
func (c *Catalog) CompositeIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.composite))
	for id := range c.composite {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IDs returns every stored listing id in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.listings))
	for id := range c.listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored listings.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listings)
}

// Version returns a counter incremented by every mutation. Cached query
// results are keyed by it, so any change invalidates them.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
