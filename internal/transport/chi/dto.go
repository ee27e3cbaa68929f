package chi

import (
	domlst "github.com/geodex-io/geodex/internal/domain/listing"
	"github.com/geodex-io/geodex/internal/domain/search/result"
)

// errorCode identifies a machine-readable error class.
type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeInvalidCoordinate errorCode = "invalid_coordinate"
	codeInvalidRadius     errorCode = "invalid_radius"
	codeEmptyQuery        errorCode = "empty_query"
	codeInvalidCursor     errorCode = "invalid_cursor"
	codeListingNotFound   errorCode = "listing_not_found"
	codeValidationFailed  errorCode = "validation_failed"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type listingPayload struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	Active         bool     `json:"active"`
	Approved       bool     `json:"approved"`
	Certifications []string `json:"certifications,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
}

type filtersPayload struct {
	Active         *bool    `json:"active,omitempty"`
	Approved       *bool    `json:"approved,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
}

type searchRequest struct {
	Query         string         `json:"query,omitempty"`
	Lat           *float64       `json:"lat,omitempty"`
	Lon           *float64       `json:"lon,omitempty"`
	RadiusMiles   float64        `json:"radius_miles,omitempty"`
	Filters       filtersPayload `json:"filters"`
	Sort          string         `json:"sort,omitempty"`
	PageSize      int            `json:"page_size,omitempty"`
	Offset        int            `json:"offset,omitempty"`
	Cursor        string         `json:"cursor,omitempty"`
	MinSimilarity float64        `json:"min_similarity,omitempty"`
}

type searchHit struct {
	Listing       listingPayload `json:"listing"`
	DistanceMiles *float64       `json:"distance_miles,omitempty"`
	TextScore     float64        `json:"text_score,omitempty"`
}

type searchResponse struct {
	Hits       []searchHit `json:"hits"`
	Total      int         `json:"total"`
	Truncated  bool        `json:"truncated"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func listingToPayload(l *domlst.Listing) listingPayload {
	p := l.Location()
	return listingPayload{
		ID:             l.ID(),
		Name:           l.Name(),
		Description:    l.Description(),
		Category:       string(l.Category()),
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

func pageToResponse(page result.Page) searchResponse {
	hits := make([]searchHit, len(page.Hits()))
	for i := range page.Hits() {
		h := &page.Hits()[i]
		sh := searchHit{
			Listing:   listingToPayload(h.Listing()),
			TextScore: h.TextScore(),
		}
		if h.HasDistance() {
			d := h.DistanceMiles()
			sh.DistanceMiles = &d
		}
		hits[i] = sh
	}
	return searchResponse{
		Hits:       hits,
		Total:      page.Total(),
		Truncated:  page.Truncated(),
		NextCursor: page.NextCursor(),
	}
}
