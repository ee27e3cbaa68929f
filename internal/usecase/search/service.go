package search

import (
	"context"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/geodex-io/geodex/internal/domain/geo"
	"github.com/geodex-io/geodex/internal/domain/search/cursor"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
	"github.com/geodex-io/geodex/internal/domain/search/request"
	"github.com/geodex-io/geodex/internal/domain/search/result"
	"github.com/geodex-io/geodex/internal/metrics"
)

// DefaultMaxCandidates is the safety cap on the ranked result set.
const DefaultMaxCandidates = 1000

// deadlineCheckStride bounds how many candidates are filtered between
// deadline checks.
const deadlineCheckStride = 256

// noDistance marks a candidate from a query without an origin.
var noDistance = math.Inf(1)

// Service is the query planner: it picks the cheapest index combination
// for the signals present, refines and filters candidates, ranks, and
// paginates. Queries are read-only and safely concurrent.
type Service struct {
	catalog       CatalogReader
	spatial       SpatialIndex
	text          TextIndex
	weights       blendWeights
	maxCandidates int
	cache         *lru.Cache[string, result.Page]
	logger        *zap.Logger
}

// New creates a search service.
func New(catalog CatalogReader, spatial SpatialIndex, text TextIndex, logger *zap.Logger) *Service {
	return &Service{
		catalog:       catalog,
		spatial:       spatial,
		text:          text,
		weights:       defaultBlendWeights,
		maxCandidates: DefaultMaxCandidates,
		logger:        logger,
	}
}

// WithBlendWeights overrides the blended score coefficients.
func (s *Service) WithBlendWeights(text, dist float64) *Service {
	s.weights = blendWeights{text: text, dist: dist}
	return s
}

// WithMaxCandidates overrides the safety cap.
func (s *Service) WithMaxCandidates(n int) *Service {
	if n > 0 {
		s.maxCandidates = n
	}
	return s
}

// WithCache enables the LRU result cache. Entries are keyed by query
// signature plus catalog version, so any index mutation invalidates them.
func (s *Service) WithCache(size int) *Service {
	if size > 0 {
		// lru.New only fails for non-positive sizes.
		s.cache, _ = lru.New[string, result.Page](size)
	}
	return s
}

// Search resolves one query. A context deadline is honored cooperatively
// at phase boundaries: on expiry the page is built from whatever
// candidates were gathered and marked truncated, never failed.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := time.Now()
	sortLabel := string(req.Sort())

	cacheKey := ""
	if s.cache != nil {
		cacheKey = fmt.Sprintf("v%d|%s", s.catalog.Version(), req.CacheKey())
		if page, ok := s.cache.Get(cacheKey); ok {
			metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
			return page, nil
		}
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	}

	cands, timedOut := s.gather(ctx, req)
	page := s.finish(req, cands, timedOut)

	if s.cache != nil && !timedOut {
		s.cache.Add(cacheKey, page)
	}

	metrics.SearchesTotal.WithLabelValues(sortLabel, "ok").Inc()
	metrics.SearchDuration.WithLabelValues(sortLabel).Observe(time.Since(start).Seconds())
	if page.Truncated() {
		metrics.SearchTruncatedTotal.Inc()
	}
	return page, nil
}

// gather runs the candidate phases: coarse index lookups, filter
// evaluation, and exact distance refinement.
func (s *Service) gather(ctx context.Context, req *request.Request) ([]candidate, bool) {
	var (
		spatialHits map[string]geo.Point
		textScores  map[string]float64
		ids         []string
	)

	switch {
	case req.HasText() && req.HasOrigin():
		// Both signals: run the lookups in parallel, then intersect with
		// the smaller set driving.
		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			spatialHits = s.spatial.Query(*req.Origin(), req.RadiusMiles())
			return nil
		})
		g.Go(func() error {
			textScores = s.text.Query(req.Pattern(), req.MinSimilarity())
			return nil
		})
		_ = g.Wait()

		if len(spatialHits) <= len(textScores) {
			for id := range spatialHits {
				if _, ok := textScores[id]; ok {
					ids = append(ids, id)
				}
			}
		} else {
			for id := range textScores {
				if _, ok := spatialHits[id]; ok {
					ids = append(ids, id)
				}
			}
		}
	case req.HasText():
		textScores = s.text.Query(req.Pattern(), req.MinSimilarity())
		ids = make([]string, 0, len(textScores))
		for id := range textScores {
			ids = append(ids, id)
		}
	case req.HasOrigin():
		spatialHits = s.spatial.Query(*req.Origin(), req.RadiusMiles())
		ids = make([]string, 0, len(spatialHits))
		for id := range spatialHits {
			ids = append(ids, id)
		}
	default:
		// Filters-only: scan the active+approved composite set.
		ids = s.catalog.CompositeIDs()
	}

	if expired(ctx) {
		return nil, true
	}

	filters := req.Filters()
	cands := make([]candidate, 0, len(ids))
	for n, id := range ids {
		if n%deadlineCheckStride == deadlineCheckStride-1 && expired(ctx) {
			return cands, true
		}

		l, ok := s.catalog.Get(id)
		if !ok {
			// Index entry without a catalog listing: exclude, never fatal.
			// The periodic consistency sweep repairs the index.
			metrics.IndexInconsistenciesTotal.Inc()
			s.logger.Warn("index inconsistency: candidate missing from catalog",
				zap.String("listing_id", id))
			continue
		}
		if !filters.Matches(&l) {
			continue
		}

		c := candidate{listing: l, distance: noDistance}
		if req.HasOrigin() {
			c.distance = geo.Distance(*req.Origin(), l.Location())
			if c.distance > req.RadiusMiles() {
				// Coarse envelope over-inclusion corrected here.
				continue
			}
		}
		if req.HasText() {
			c.textScore = textScores[id]
		}
		cands = append(cands, c)
	}
	return cands, expired(ctx)
}

// finish ranks, applies the safety cap, and paginates.
func (s *Service) finish(req *request.Request, cands []candidate, timedOut bool) result.Page {
	hits := rank(cands, req.Sort(), req.RadiusMiles(), s.weights)
	total := len(hits)

	truncated := timedOut
	if len(hits) > s.maxCandidates {
		hits = hits[:s.maxCandidates]
		truncated = true
	}

	start := req.Offset()
	if cur := req.Cursor(); cur != nil {
		start = resumeAfter(hits, cur, req.Sort())
	}
	if start > len(hits) {
		start = len(hits)
	}

	end := start + req.PageSize()
	if end > len(hits) {
		end = len(hits)
	}

	nextCursor := ""
	if end > start && end < len(hits) {
		last := hits[end-1]
		nextCursor = cursor.New(req.Sort(), last.SortKey(), last.ID()).Encode()
	}

	return result.NewPage(hits[start:end], total, truncated, nextCursor)
}

// resumeAfter locates the position following the cursor's (sortKey, id).
// When that hit is still present the next page starts right after it;
// if it vanished, the page resumes at the first hit ordered strictly
// after the cursor's sort key.
func resumeAfter(hits []result.Hit, cur *cursor.Cursor, sortMode mode.Sort) int {
	for i := range hits {
		if hits[i].ID() == cur.ID() && hits[i].SortKey() == cur.SortKey() {
			return i + 1
		}
	}
	for i := range hits {
		if keyDescending(sortMode) {
			if hits[i].SortKey() < cur.SortKey() {
				return i
			}
		} else if hits[i].SortKey() > cur.SortKey() {
			return i
		}
	}
	return len(hits)
}

func expired(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
