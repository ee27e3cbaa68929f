package geo

import (
	"fmt"
	"math"

	"github.com/geodex-io/geodex/internal/domain"
)

// EarthRadiusMiles is the mean radius of Earth used for Haversine distance.
const EarthRadiusMiles = 3958.7613

// milesPerDegreeLat is the great-circle length of one degree of latitude.
const milesPerDegreeLat = EarthRadiusMiles * math.Pi / 180

// Point is a validated geographic coordinate pair in degrees.
type Point struct {
	lat float64
	lon float64
}

// NewPoint validates latitude ([-90,90]) and longitude ([-180,180]) and
// creates a Point. NaN and infinite values are rejected.
func NewPoint(lat, lon float64) (Point, error) {
	if !Valid(lat, lon) {
		return Point{}, fmt.Errorf("%w: lat=%v lon=%v", domain.ErrInvalidCoordinate, lat, lon)
	}
	return Point{lat: lat, lon: lon}, nil
}

// Valid reports whether latitude is in [-90,90] and longitude in [-180,180].
func Valid(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return p.lat }

// Lon returns the longitude in degrees.
func (p Point) Lon() float64 { return p.lon }

// Distance returns the great-circle distance in miles between two points,
// computed via the Haversine formula on a sphere of Earth's mean radius.
// This is the single source of truth for distance math: the coarse spatial
// envelope and the exact refinement both derive from it.
func Distance(a, b Point) float64 {
	lat1r := a.lat * math.Pi / 180
	lat2r := b.lat * math.Pi / 180
	dLat := (b.lat - a.lat) * math.Pi / 180
	dLon := (b.lon - a.lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

// Box is a latitude/longitude rectangle. When the radius crosses the
// antimeridian the envelope is returned as two boxes.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside the box (inclusive).
func (b Box) Contains(p Point) bool {
	return p.lat >= b.MinLat && p.lat <= b.MaxLat &&
		p.lon >= b.MinLon && p.lon <= b.MaxLon
}

// boundingPad widens the envelope slightly so float rounding can never
// exclude a point that lies exactly on the radius.
const boundingPad = 1.001

// BoundingBoxes returns a conservative bounding envelope around origin for
// the given radius in miles: every point within radius lies inside at least
// one returned box. Near the poles the longitude span widens to the full
// range; at the antimeridian the envelope splits into two boxes.
func BoundingBoxes(origin Point, radiusMiles float64) []Box {
	latDelta := radiusMiles * boundingPad / milesPerDegreeLat

	minLat := origin.lat - latDelta
	maxLat := origin.lat + latDelta
	if minLat < -90 {
		minLat = -90
	}
	if maxLat > 90 {
		maxLat = 90
	}

	// The narrowest parallel inside the band bounds the longitude span.
	cosLat := math.Min(math.Cos(minLat*math.Pi/180), math.Cos(maxLat*math.Pi/180))
	if origin.lat-latDelta <= -90 || origin.lat+latDelta >= 90 || cosLat <= 1e-9 {
		return []Box{{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: 180}}
	}

	lonDelta := latDelta / cosLat
	if lonDelta >= 180 {
		return []Box{{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: 180}}
	}

	minLon := origin.lon - lonDelta
	maxLon := origin.lon + lonDelta
	switch {
	case minLon < -180:
		return []Box{
			{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: maxLon},
			{MinLat: minLat, MaxLat: maxLat, MinLon: minLon + 360, MaxLon: 180},
		}
	case maxLon > 180:
		return []Box{
			{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: 180},
			{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: maxLon - 360},
		}
	default:
		return []Box{{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}}
	}
}
