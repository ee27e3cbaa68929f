package geodex

import "github.com/geodex-io/geodex/internal/domain"

// Sentinel errors re-exported for errors.Is checks by SDK users.
var (
	ErrInvalidCoordinate = domain.ErrInvalidCoordinate
	ErrInvalidRadius     = domain.ErrInvalidRadius
	ErrEmptyQuery        = domain.ErrEmptyQuery
	ErrInvalidCursor     = domain.ErrInvalidCursor
	ErrListingNotFound   = domain.ErrListingNotFound
)
