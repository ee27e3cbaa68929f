package result

import (
	"math"

	"github.com/geodex-io/geodex/internal/domain/listing"
)

// Hit is a single ranked search hit.
type Hit struct {
	listing       listing.Listing
	distanceMiles float64
	textScore     float64
	sortKey       float64
}

// NewHit creates a hit. distanceMiles is +Inf when the query had no
// origin; textScore is 0 when it had no pattern.
func NewHit(l listing.Listing, distanceMiles, textScore, sortKey float64) Hit {
	return Hit{listing: l, distanceMiles: distanceMiles, textScore: textScore, sortKey: sortKey}
}

// Listing returns the matched listing.
func (h *Hit) Listing() *listing.Listing { return &h.listing }

// ID returns the matched listing id.
func (h *Hit) ID() string { return h.listing.ID() }

// DistanceMiles returns the exact distance from the query origin.
func (h *Hit) DistanceMiles() float64 { return h.distanceMiles }

// HasDistance reports whether the query had an origin.
func (h *Hit) HasDistance() bool { return !math.IsInf(h.distanceMiles, 1) }

// TextScore returns the trigram similarity score in [0,1].
func (h *Hit) TextScore() float64 { return h.textScore }

// SortKey returns the value the hit was ordered by, used for cursors.
func (h *Hit) SortKey() float64 { return h.sortKey }

// Page is one page of ranked results.
type Page struct {
	hits       []Hit
	total      int
	truncated  bool
	nextCursor string
}

// NewPage creates a result page. total is the approximate total number
// of matches before pagination; truncated marks results capped by the
// safety limit or a deadline.
func NewPage(hits []Hit, total int, truncated bool, nextCursor string) Page {
	return Page{hits: hits, total: total, truncated: truncated, nextCursor: nextCursor}
}

// Hits returns the ordered hits of this page.
func (p *Page) Hits() []Hit { return p.hits }

// Total returns the approximate total match count.
func (p *Page) Total() int { return p.total }

// Truncated reports whether the result set was capped.
func (p *Page) Truncated() bool { return p.truncated }

// NextCursor returns the continuation token ("" on the last page).
func (p *Page) NextCursor() string { return p.nextCursor }
