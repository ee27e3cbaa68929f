package mode

// Sort is the result ordering strategy.
type Sort string

// Sort mode constants.
const (
	// Blended combines text similarity and proximity into one score.
	Blended  Sort = "blended"
	Distance Sort = "distance"
	// Relevance orders by trigram text similarity.
	Relevance Sort = "relevance"
	// Quality orders by the external listing quality signal (rating).
	Quality Sort = "quality"
)

// IsValid checks if the sort mode is one of the supported values.
func (s Sort) IsValid() bool {
	return s == Blended || s == Distance || s == Relevance || s == Quality
}

// Default resolves the sort mode for the signals present in a query:
// blended when both text and origin are given, relevance for text-only,
// distance for location-only, quality for filters-only scans.
func Default(hasText, hasOrigin bool) Sort {
	switch {
	case hasText && hasOrigin:
		return Blended
	case hasText:
		return Relevance
	case hasOrigin:
		return Distance
	default:
		return Quality
	}
}
