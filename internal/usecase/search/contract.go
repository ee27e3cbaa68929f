package search

import (
	"github.com/geodex-io/geodex/internal/domain/geo"
	"github.com/geodex-io/geodex/internal/domain/listing"
)

// SpatialIndex provides coarse proximity candidates: a superset of the
// listings within radiusMiles of origin (refined here with the exact
// distance).
type SpatialIndex interface {
	Query(origin geo.Point, radiusMiles float64) map[string]geo.Point
}

// TextIndex provides fuzzy text candidates with similarity scores in [0,1].
type TextIndex interface {
	Query(pattern string, threshold float64) map[string]float64
}

// CatalogReader reads listing snapshots and the active+approved
// composite id set.
type CatalogReader interface {
	Get(id string) (listing.Listing, bool)
	CompositeIDs() []string
	Version() uint64
}
