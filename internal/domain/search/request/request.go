package request

import (
	"fmt"
	"strings"

	"github.com/geodex-io/geodex/internal/domain"
	"github.com/geodex-io/geodex/internal/domain/geo"
	"github.com/geodex-io/geodex/internal/domain/search/cursor"
	"github.com/geodex-io/geodex/internal/domain/search/filter"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
)

// Search parameter limits.
const (
	MaxPatternLength      = 256
	DefaultPageSize       = 20
	MaxPageSize           = 100
	DefaultMaxRadiusMiles = 250.0
	DefaultMinSimilarity  = 0.3
)

// Request is a validated search query.
type Request struct {
	pattern       string
	origin        *geo.Point
	radiusMiles   float64
	filters       filter.Set
	sort          mode.Sort
	pageSize      int
	offset        int
	cursor        *cursor.Cursor
	minSimilarity float64
}

// New validates and normalizes search parameters.
//
// A query must carry at least one of: text pattern, origin, or filters
// (ErrEmptyQuery otherwise). An origin requires a radius in
// (0, maxRadiusMiles] (ErrInvalidRadius otherwise; maxRadiusMiles <= 0
// selects DefaultMaxRadiusMiles). Defaults: sort resolved from the signals
// present, pageSize=20 (capped at 100), minSimilarity=0.3. A non-empty
// cursorToken must have been issued under the resolved sort mode.
func New(
	pattern string,
	origin *geo.Point,
	radiusMiles float64,
	filters filter.Set,
	sortMode mode.Sort,
	pageSize, offset int,
	cursorToken string,
	minSimilarity float64,
	maxRadiusMiles float64,
) (Request, error) {
	pattern = strings.TrimSpace(pattern)
	if len(pattern) > MaxPatternLength {
		return Request{}, fmt.Errorf("pattern too long (max %d chars)", MaxPatternLength)
	}

	if pattern == "" && origin == nil && filters.IsEmpty() {
		return Request{}, fmt.Errorf("%w: need a text pattern, an origin, or filters", domain.ErrEmptyQuery)
	}

	if maxRadiusMiles <= 0 {
		maxRadiusMiles = DefaultMaxRadiusMiles
	}
	switch {
	case origin == nil && radiusMiles != 0:
		return Request{}, fmt.Errorf("%w: radius given without an origin", domain.ErrInvalidRadius)
	case origin != nil && radiusMiles <= 0:
		return Request{}, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidRadius)
	case origin != nil && radiusMiles > maxRadiusMiles:
		return Request{}, fmt.Errorf("%w: radius %v exceeds maximum %v miles",
			domain.ErrInvalidRadius, radiusMiles, maxRadiusMiles)
	}

	if sortMode == "" {
		sortMode = mode.Default(pattern != "", origin != nil)
	}
	if !sortMode.IsValid() {
		return Request{}, fmt.Errorf("invalid sort mode: %q", sortMode)
	}
	if sortMode == mode.Blended && (pattern == "" || origin == nil) {
		return Request{}, fmt.Errorf("blended sort requires both a text pattern and an origin")
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if minSimilarity == 0 {
		minSimilarity = DefaultMinSimilarity
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return Request{}, fmt.Errorf("min_similarity must be between 0 and 1")
	}

	var cur *cursor.Cursor
	if cursorToken != "" {
		if offset > 0 {
			return Request{}, fmt.Errorf("offset and cursor are mutually exclusive")
		}
		c, err := cursor.Decode(cursorToken)
		if err != nil {
			return Request{}, err
		}
		if c.Sort() != sortMode {
			return Request{}, fmt.Errorf("%w: issued under sort %q, query uses %q",
				domain.ErrInvalidCursor, c.Sort(), sortMode)
		}
		cur = &c
	}

	return Request{
		pattern:       pattern,
		origin:        origin,
		radiusMiles:   radiusMiles,
		filters:       filters,
		sort:          sortMode,
		pageSize:      pageSize,
		offset:        offset,
		cursor:        cur,
		minSimilarity: minSimilarity,
	}, nil
}

// Pattern returns the text pattern ("" when absent).
func (r *Request) Pattern() string { return r.pattern }

// HasText reports whether a text pattern was given.
func (r *Request) HasText() bool { return r.pattern != "" }

// Origin returns the search origin (nil when absent).
func (r *Request) Origin() *geo.Point { return r.origin }

// HasOrigin reports whether an origin was given.
func (r *Request) HasOrigin() bool { return r.origin != nil }

// RadiusMiles returns the search radius (0 when no origin).
func (r *Request) RadiusMiles() float64 { return r.radiusMiles }

// Filters returns the filter set.
func (r *Request) Filters() filter.Set { return r.filters }

// Sort returns the resolved sort mode.
func (r *Request) Sort() mode.Sort { return r.sort }

// PageSize returns the page size.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the pagination offset.
func (r *Request) Offset() int { return r.offset }

// Cursor returns the decoded continuation cursor (nil when absent).
func (r *Request) Cursor() *cursor.Cursor { return r.cursor }

// MinSimilarity returns the trigram similarity threshold.
func (r *Request) MinSimilarity() float64 { return r.minSimilarity }

// CacheKey returns a canonical string identifying the query for the
// result cache. Requests with equal keys produce identical pages as
// long as the index generation is unchanged.
func (r *Request) CacheKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "q=%s|s=%s|n=%d|o=%d|m=%v|f=%s",
		strings.ToLower(r.pattern), r.sort, r.pageSize, r.offset, r.minSimilarity, r.filters.Key())
	if r.origin != nil {
		fmt.Fprintf(&b, "|g=%.6f,%.6f,%v", r.origin.Lat(), r.origin.Lon(), r.radiusMiles)
	}
	if r.cursor != nil {
		fmt.Fprintf(&b, "|c=%s", r.cursor.Encode())
	}
	return b.String()
}
