package geodex

import (
	"fmt"

	"github.com/geodex-io/geodex/internal/domain/geo"
	domlst "github.com/geodex-io/geodex/internal/domain/listing"
	"github.com/geodex-io/geodex/internal/domain/search/filter"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
	"github.com/geodex-io/geodex/internal/domain/search/request"
	"github.com/geodex-io/geodex/internal/domain/search/result"
)

func toInternalListing(l *Listing) (domlst.Listing, error) {
	return domlst.New(
		l.ID, l.Name, l.Description,
		domlst.Category(l.Category),
		l.Lat, l.Lon,
		l.City, l.State,
		l.Active, l.Approved,
		l.Certifications, l.Rating,
	)
}

func fromInternalListing(l *domlst.Listing) Listing {
	p := l.Location()
	return Listing{
		ID:             l.ID(),
		Name:           l.Name(),
		Description:    l.Description(),
		Category:       Category(l.Category()),
		Lat:            p.Lat(),
		Lon:            p.Lon(),
		City:           l.City(),
		State:          l.State(),
		Active:         l.Active(),
		Approved:       l.Approved(),
		Certifications: l.Certifications(),
		Rating:         l.Rating(),
	}
}

func toInternalRequest(q *Query, maxRadiusMiles float64) (*request.Request, error) {
	var origin *geo.Point
	if q.Lat != nil || q.Lon != nil {
		if q.Lat == nil || q.Lon == nil {
			return nil, fmt.Errorf("both Lat and Lon are required: %w", ErrInvalidCoordinate)
		}
		p, err := geo.NewPoint(*q.Lat, *q.Lon)
		if err != nil {
			return nil, err
		}
		origin = &p
	}

	categories := make([]domlst.Category, 0, len(q.Filters.Categories))
	for _, c := range q.Filters.Categories {
		categories = append(categories, domlst.Category(c))
	}

	filters, err := filter.New(
		q.Filters.Active, q.Filters.Approved,
		categories, q.Filters.Certifications,
		q.Filters.City, q.Filters.State,
	)
	if err != nil {
		return nil, err
	}

	req, err := request.New(
		q.Text, origin, q.RadiusMiles,
		filters, mode.Sort(q.Sort),
		q.PageSize, q.Offset, q.Cursor,
		q.MinSimilarity, maxRadiusMiles,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func fromInternalPage(page result.Page) Page {
	hits := make([]Hit, len(page.Hits()))
	for i := range page.Hits() {
		h := &page.Hits()[i]
		hit := Hit{
			Listing:   fromInternalListing(h.Listing()),
			TextScore: h.TextScore(),
		}
		if h.HasDistance() {
			d := h.DistanceMiles()
			hit.DistanceMiles = &d
		}
		hits[i] = hit
	}
	return Page{
		Hits:       hits,
		Total:      page.Total(),
		Truncated:  page.Truncated(),
		NextCursor: page.NextCursor(),
	}
}
