package listing

import (
	"fmt"
	"strconv"
	"strings"

	domlst "github.com/geodex-io/geodex/internal/domain/listing"
)

// buildHashFields converts a domain Listing into a flat map[string]string for HSET.
func buildHashFields(l *domlst.Listing) map[string]string {
	p := l.Location()
	return map[string]string{
		"id":             l.ID(),
		"name":           l.Name(),
		"description":    l.Description(),
		"category":       string(l.Category()),
		"lat":            strconv.FormatFloat(p.Lat(), 'f', -1, 64),
		"lon":            strconv.FormatFloat(p.Lon(), 'f', -1, 64),
		"city":           l.City(),
		"state":          l.State(),
		"active":         strconv.FormatBool(l.Active()),
		"approved":       strconv.FormatBool(l.Approved()),
		"certifications": strings.Join(l.Certifications(), ","),
		"rating":         strconv.FormatFloat(l.Rating(), 'f', -1, 64),
	}
}

// parseHashFields converts a flat hash map back into a domain Listing.
// The constructor re-validates, so a corrupted record surfaces as an error.
func parseHashFields(m map[string]string) (domlst.Listing, error) {
	lat, err := strconv.ParseFloat(m["lat"], 64)
	if err != nil {
		return domlst.Listing{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(m["lon"], 64)
	if err != nil {
		return domlst.Listing{}, fmt.Errorf("parse lon: %w", err)
	}
	rating, err := strconv.ParseFloat(m["rating"], 64)
	if err != nil {
		return domlst.Listing{}, fmt.Errorf("parse rating: %w", err)
	}

	var certs []string
	if m["certifications"] != "" {
		certs = strings.Split(m["certifications"], ",")
	}

	return domlst.New(
		m["id"], m["name"], m["description"],
		domlst.Category(m["category"]),
		lat, lon,
		m["city"], m["state"],
		m["active"] == "true", m["approved"] == "true",
		certs, rating,
	)
}
