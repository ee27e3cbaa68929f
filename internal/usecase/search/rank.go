package search

import (
	"math"
	"sort"

	"github.com/geodex-io/geodex/internal/domain/listing"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
	"github.com/geodex-io/geodex/internal/domain/search/result"
)

// candidate is a listing that survived candidate gathering, filtering,
// and exact distance refinement.
type candidate struct {
	listing   listing.Listing
	distance  float64 // miles; +Inf when the query had no origin
	textScore float64 // [0,1]; 0 when the query had no pattern
}

// blendWeights are the coefficients of the blended score
// w_text*textScore + w_dist*(1 - min(distance, radius)/radius).
// The formula is a stable contract: pagination cursors depend on it.
type blendWeights struct {
	text float64
	dist float64
}

// defaultBlendWeights gives text similarity and proximity equal say.
var defaultBlendWeights = blendWeights{text: 0.5, dist: 0.5}

// rank produces a deterministic total order over candidates. Every mode
// breaks final ties by ascending listing id, so identical queries over
// unchanged data always paginate identically.
func rank(cands []candidate, sortMode mode.Sort, radiusMiles float64, w blendWeights) []result.Hit {
	keyed := make([]result.Hit, 0, len(cands))
	for _, c := range cands {
		keyed = append(keyed, result.NewHit(c.listing, c.distance, c.textScore,
			sortKey(c, sortMode, radiusMiles, w)))
	}

	sort.Slice(keyed, func(i, j int) bool {
		return hitLess(&keyed[i], &keyed[j], sortMode)
	})
	return keyed
}

// sortKey computes the primary ordering value of a candidate.
func sortKey(c candidate, sortMode mode.Sort, radiusMiles float64, w blendWeights) float64 {
	switch sortMode {
	case mode.Distance:
		return c.distance
	case mode.Relevance:
		return c.textScore
	case mode.Quality:
		return c.listing.Rating()
	case mode.Blended:
		return blendScore(c.textScore, c.distance, radiusMiles, w)
	default:
		return 0
	}
}

// blendScore folds text similarity and proximity into one value in [0,1].
// A candidate at the origin contributes the full distance weight; one at
// the radius edge (or beyond, for coarse over-inclusion) contributes none.
func blendScore(textScore, distance, radiusMiles float64, w blendWeights) float64 {
	proximity := 0.0
	if radiusMiles > 0 && !math.IsInf(distance, 1) {
		proximity = 1 - math.Min(distance, radiusMiles)/radiusMiles
	}
	return w.text*textScore + w.dist*proximity
}

// hitLess orders two hits under the given mode:
//
//	distance:  ascending distance, then higher textScore, then id
//	relevance: descending textScore, then ascending distance, then id
//	quality:   descending rating, then ascending distance, then id
//	blended:   descending blended score, then id
func hitLess(a, b *result.Hit, sortMode mode.Sort) bool {
	switch sortMode {
	case mode.Distance:
		if a.SortKey() != b.SortKey() {
			return a.SortKey() < b.SortKey()
		}
		if a.TextScore() != b.TextScore() {
			return a.TextScore() > b.TextScore()
		}
	case mode.Relevance, mode.Quality:
		if a.SortKey() != b.SortKey() {
			return a.SortKey() > b.SortKey()
		}
		if a.DistanceMiles() != b.DistanceMiles() {
			return a.DistanceMiles() < b.DistanceMiles()
		}
	case mode.Blended:
		if a.SortKey() != b.SortKey() {
			return a.SortKey() > b.SortKey()
		}
	}
	return a.ID() < b.ID()
}

// keyDescending reports whether the mode orders its sort key descending.
func keyDescending(sortMode mode.Sort) bool {
	return sortMode != mode.Distance
}
