package geodex

// Category classifies a listing.
type Category string

// Supported listing categories.
const (
	CategoryRestaurant   Category = "restaurant"
	CategoryGrocery      Category = "grocery"
	CategoryBakery       Category = "bakery"
	CategoryCatering     Category = "catering"
	CategoryRetail       Category = "retail"
	CategoryService      Category = "service"
	CategoryOrganization Category = "organization"
)

// Listing is the public listing model.
type Listing struct {
	ID             string
	Name           string
	Description    string
	Category       Category
	Lat            float64
	Lon            float64
	City           string
	State          string
	Active         bool
	Approved       bool
	Certifications []string
	Rating         float64
}

// SortMode selects the ranking strategy for a query.
type SortMode string

// Ranking strategies. Leaving SortMode empty picks a sensible default
// from the query's signals.
const (
	SortBlended   SortMode = "blended"
	SortDistance  SortMode = "distance"
	SortRelevance SortMode = "relevance"
	SortQuality   SortMode = "quality"
)

// Filters narrows a query to listings matching every set field.
type Filters struct {
	Active         *bool
	Approved       *bool
	Categories     []Category
	Certifications []string
	City           string
	State          string
}

// Query describes one search. Either Text or an Origin (or both) must
// be set, unless Filters alone drive the query.
type Query struct {
	Text          string
	Lat           *float64
	Lon           *float64
	RadiusMiles   float64
	Filters       Filters
	Sort          SortMode
	PageSize      int
	Offset        int
	Cursor        string
	MinSimilarity float64
}

// Hit is one ranked search result.
type Hit struct {
	Listing       Listing
	DistanceMiles *float64
	TextScore     float64
}

// Page is one page of ranked results.
type Page struct {
	Hits       []Hit
	Total      int
	Truncated  bool
	NextCursor string
}

// ConsistencyReport summarizes one consistency sweep.
type ConsistencyReport struct {
	Repaired int
}
