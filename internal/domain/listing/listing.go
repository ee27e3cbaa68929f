package listing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/geodex-io/geodex/internal/domain/geo"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Field size limits.
const (
	MaxIDLength          = 256
	MaxNameLength        = 512
	MaxDescriptionLength = 8192
	MaxRating            = 5.0
)

// Category is the listing category enumeration.
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

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRestaurant, CategoryGrocery, CategoryBakery, CategoryCatering,
		CategoryRetail, CategoryService, CategoryOrganization:
		return true
	}
	return false
}

// Listing is the read-optimized copy of a canonical store listing
// (immutable value object).
type Listing struct {
	id             string
	name           string
	description    string
	category       Category
	location       geo.Point
	city           string
	state          string
	active         bool
	approved       bool
	certifications map[string]struct{}
	rating         float64
}

// New validates and creates a Listing.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Coordinates are validated via geo.NewPoint.
func New(
	id, name, description string,
	category Category,
	lat, lon float64,
	city, state string,
	active, approved bool,
	certifications []string,
	rating float64,
) (Listing, error) {
	if id == "" {
		return Listing{}, fmt.Errorf("listing ID is required")
	}
	if len(id) > MaxIDLength {
		return Listing{}, fmt.Errorf("listing ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return Listing{}, fmt.Errorf("listing ID must be alphanumeric with underscores and hyphens")
	}
	if name == "" {
		return Listing{}, fmt.Errorf("listing name is required")
	}
	if len(name) > MaxNameLength {
		return Listing{}, fmt.Errorf("listing name too long (max %d)", MaxNameLength)
	}
	if len(description) > MaxDescriptionLength {
		return Listing{}, fmt.Errorf("description too long (max %d)", MaxDescriptionLength)
	}
	if !category.IsValid() {
		return Listing{}, fmt.Errorf("unknown category %q", category)
	}
	if rating < 0 || rating > MaxRating {
		return Listing{}, fmt.Errorf("rating must be between 0 and %v", MaxRating)
	}

	location, err := geo.NewPoint(lat, lon)
	if err != nil {
		return Listing{}, err
	}

	certs := make(map[string]struct{}, len(certifications))
	for _, c := range certifications {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			certs[c] = struct{}{}
		}
	}

	return Listing{
		id:             id,
		name:           name,
		description:    description,
		category:       category,
		location:       location,
		city:           city,
		state:          state,
		active:         active,
		approved:       approved,
		certifications: certs,
		rating:         rating,
	}, nil
}

// ID returns the listing identifier.
func (l *Listing) ID() string { return l.id }

// Name returns the listing name.
func (l *Listing) Name() string { return l.name }

// Description returns the listing description.
func (l *Listing) Description() string { return l.description }

// Category returns the listing category.
func (l *Listing) Category() Category { return l.category }

// Location returns the listing geolocation.
func (l *Listing) Location() geo.Point { return l.location }

// City returns the listing city.
func (l *Listing) City() string { return l.city }

// State returns the listing state.
func (l *Listing) State() string { return l.state }

// Active reports whether the listing is active.
func (l *Listing) Active() bool { return l.active }

// Approved reports whether the listing is approved.
func (l *Listing) Approved() bool { return l.approved }

// Rating returns the external quality signal (0-5).
func (l *Listing) Rating() float64 { return l.rating }

// HasCertification reports whether the listing carries the given tag.
// Tags are matched case-insensitively.
func (l *Listing) HasCertification(tag string) bool {
	_, ok := l.certifications[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// Certifications returns the certification tags in sorted order.
func (l *Listing) Certifications() []string {
	tags := make([]string, 0, len(l.certifications))
	for t := range l.certifications {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Indexable reports whether the listing belongs in the search indexes:
// only active and approved listings are searchable.
func (l *Listing) Indexable() bool {
	return l.active && l.approved
}
