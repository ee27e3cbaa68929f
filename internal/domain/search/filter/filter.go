package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/geodex-io/geodex/internal/domain/listing"
)

// Limits on filter cardinality.
const (
	MaxCategories     = 16
	MaxCertifications = 32
)

// Set is a conjunction of independent boolean conditions evaluated
// against a listing's attributes. The zero value matches everything.
type Set struct {
	active         *bool
	approved       *bool
	categories     []listing.Category
	certifications []string
	city           string
	state          string
}

// New validates and creates a filter Set. Categories must be known;
// certification tags and city/state are normalized for case-insensitive
// comparison.
func New(
	active, approved *bool,
	categories []listing.Category,
	certifications []string,
	city, state string,
) (Set, error) {
	if len(categories) > MaxCategories {
		return Set{}, fmt.Errorf("too many categories (max %d)", MaxCategories)
	}
	if len(certifications) > MaxCertifications {
		return Set{}, fmt.Errorf("too many certification tags (max %d)", MaxCertifications)
	}
	for _, c := range categories {
		if !c.IsValid() {
			return Set{}, fmt.Errorf("unknown category %q", c)
		}
	}

	certs := make([]string, 0, len(certifications))
	for _, c := range certifications {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			certs = append(certs, c)
		}
	}
	sort.Strings(certs)

	return Set{
		active:         active,
		approved:       approved,
		categories:     categories,
		certifications: certs,
		city:           strings.TrimSpace(city),
		state:          strings.TrimSpace(state),
	}, nil
}

// IsEmpty reports whether the set has no conditions.
func (s Set) IsEmpty() bool {
	return s.active == nil && s.approved == nil &&
		len(s.categories) == 0 && len(s.certifications) == 0 &&
		s.city == "" && s.state == ""
}

// Matches evaluates the conjunction against a listing. The result is
// order-independent; the most selective conditions (active, approved)
// are checked first to fail fast.
func (s Set) Matches(l *listing.Listing) bool {
	if s.active != nil && l.Active() != *s.active {
		return false
	}
	if s.approved != nil && l.Approved() != *s.approved {
		return false
	}
	if len(s.categories) > 0 && !s.matchesCategory(l.Category()) {
		return false
	}
	if s.city != "" && !strings.EqualFold(s.city, l.City()) {
		return false
	}
	if s.state != "" && !strings.EqualFold(s.state, l.State()) {
		return false
	}
	for _, tag := range s.certifications {
		if !l.HasCertification(tag) {
			return false
		}
	}
	return true
}

func (s Set) matchesCategory(c listing.Category) bool {
	for _, want := range s.categories {
		if want == c {
			return true
		}
	}
	return false
}

// Key returns a canonical string form of the set, used in cache keys.
func (s Set) Key() string {
	var b strings.Builder
	if s.active != nil {
		fmt.Fprintf(&b, "a=%t;", *s.active)
	}
	if s.approved != nil {
		fmt.Fprintf(&b, "p=%t;", *s.approved)
	}
	for _, c := range s.categories {
		fmt.Fprintf(&b, "c=%s;", c)
	}
	for _, c := range s.certifications {
		fmt.Fprintf(&b, "t=%s;", c)
	}
	if s.city != "" {
		fmt.Fprintf(&b, "ci=%s;", strings.ToLower(s.city))
	}
	if s.state != "" {
		fmt.Fprintf(&b, "st=%s;", strings.ToLower(s.state))
	}
	return b.String()
}
