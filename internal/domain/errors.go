package domain

import "errors"

var (
	// ErrInvalidCoordinate signals a latitude/longitude out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidRadius signals a non-positive or over-limit search radius.
	ErrInvalidRadius = errors.New("invalid radius")
	// ErrEmptyQuery signals a query with neither text, origin, nor filters.
	ErrEmptyQuery = errors.New("empty query")
	// ErrInvalidCursor signals a malformed or mismatched pagination cursor.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrListingNotFound signals a missing listing.
	ErrListingNotFound = errors.New("listing not found")
	// ErrIndexInconsistency signals an index entry with no catalog listing.
	ErrIndexInconsistency = errors.New("index inconsistency")
)
