package indexer

import (
	"context"

	"github.com/geodex-io/geodex/internal/domain/geo"
	"github.com/geodex-io/geodex/internal/domain/listing"
)

// Catalog is the authoritative listing store the indexer maintains.
type Catalog interface {
	Put(l listing.Listing)
	Delete(id string) bool
	Get(id string) (listing.Listing, bool)
	IDs() []string
	Len() int
}

// SpatialIndex receives coordinate mutations for indexable listings.
type SpatialIndex interface {
	Upsert(id string, p geo.Point)
	Remove(id string) bool
	Contains(id string) bool
	IDs() []string
	Len() int
}

// TextIndex receives name/description mutations for indexable listings.
type TextIndex interface {
	Upsert(id, name, description string)
	Remove(id string) bool
	Contains(id string) bool
	IDs() []string
	Len() int
}

// PersistStore durably persists listings so indexes can be rebuilt
// after a restart. Optional: without one the indexer is memory-only.
type PersistStore interface {
	Save(ctx context.Context, l *listing.Listing) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]listing.Listing, error)
}
