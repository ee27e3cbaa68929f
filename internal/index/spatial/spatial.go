// Package spatial provides the coarse proximity index: an in-process
// R-tree over listing geolocations. Queries return a conservative
// superset of the listings within a radius; callers refine with the
// exact haversine distance.
package spatial

import (
	"sort"
	"sync"

	"github.com/tidwall/rtree"

	"github.com/geodex-io/geodex/internal/domain/geo"
)

// Index is an R-tree over listing points. Safe for concurrent use:
// readers proceed in parallel, writers are serialized.
type Index struct {
	mu     sync.RWMutex
	tree   rtree.RTreeG[string]
	points map[string]geo.Point
}

// New creates an empty spatial index.
func New() *Index {
	return &Index{points: make(map[string]geo.Point)}
}

// Upsert inserts or moves a listing's point. Points are validated at
// the listing boundary; the index never holds an invalid coordinate.
func (i *Index) Upsert(id string, p geo.Point) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if old, ok := i.points[id]; ok {
		if old == p {
			return
		}
		i.tree.Delete(rect(old), rect(old), id)
	}
	i.tree.Insert(rect(p), rect(p), id)
	i.points[id] = p
}

// Remove deletes a listing from the index. Returns false if absent.
func (i *Index) Remove(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	p, ok := i.points[id]
	if !ok {
		return false
	}
	i.tree.Delete(rect(p), rect(p), id)
	delete(i.points, id)
	return true
}

// Query returns every listing inside the conservative bounding envelope
// around origin: a superset of the listings truly within radiusMiles
// (complete, not exact). O(log n + k) via the tree.
func (i *Index) Query(origin geo.Point, radiusMiles float64) map[string]geo.Point {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make(map[string]geo.Point)
	for _, box := range geo.BoundingBoxes(origin, radiusMiles) {
		i.tree.Search(
			[2]float64{box.MinLon, box.MinLat},
			[2]float64{box.MaxLon, box.MaxLat},
			func(_, _ [2]float64, id string) bool {
				out[id] = i.points[id]
				return true
			},
		)
	}
	return out
}

// Contains reports whether the listing is indexed.
func (i *Index) Contains(id string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.points[id]
	return ok
}

// Len returns the number of indexed listings.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.points)
}

// IDs returns all indexed listing ids in sorted order (consistency sweep).
func (i *Index) IDs() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	ids := make([]string, 0, len(i.points))
	for id := range i.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func rect(p geo.Point) [2]float64 {
	return [2]float64{p.Lon(), p.Lat()}
}
