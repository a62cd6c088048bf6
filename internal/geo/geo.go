// Package geo provides coordinate validation and great-circle distance
// calculations for venue search and ranking.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMiles is the radius used for haversine distances.
const EarthRadiusMiles = 3956.0

// ErrInvalidCoordinate indicates a latitude outside [-90,90] or a longitude
// outside [-180,180].
var ErrInvalidCoordinate = fmt.Errorf("invalid coordinate")

// Point is a WGS84 latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the point lies within valid coordinate ranges.
func (p Point) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidCoordinate, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidCoordinate, p.Longitude)
	}
	return nil
}

// Distance returns the haversine distance between two points in miles.
func Distance(a, b Point) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	lat1 := radians(a.Latitude)
	lon1 := radians(a.Longitude)
	lat2 := radians(b.Latitude)
	lon2 := radians(b.Longitude)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return c * EarthRadiusMiles, nil
}

// WithinRadius reports whether point is within radiusMiles of center.
func WithinRadius(center, point Point, radiusMiles float64) (bool, error) {
	d, err := Distance(center, point)
	if err != nil {
		return false, err
	}
	return d <= radiusMiles, nil
}

// BoundingBox is a latitude/longitude rectangle used as a cheap SQL prefilter
// before exact distance checks.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Bounds returns a bounding box approximating a radius around center.
// One degree of latitude is ~69 miles; longitude degrees shrink with
// cos(latitude).
func Bounds(center Point, radiusMiles float64) (BoundingBox, error) {
	if err := center.Validate(); err != nil {
		return BoundingBox{}, err
	}

	latRange := radiusMiles / 69.0
	lonScale := math.Abs(math.Cos(radians(center.Latitude)))
	if lonScale < 1e-6 {
		// At the poles every longitude is in range.
		return BoundingBox{
			MinLat: center.Latitude - latRange,
			MaxLat: center.Latitude + latRange,
			MinLon: -180,
			MaxLon: 180,
		}, nil
	}
	lonRange := radiusMiles / (69.0 * lonScale)

	return BoundingBox{
		MinLat: center.Latitude - latRange,
		MaxLat: center.Latitude + latRange,
		MinLon: center.Longitude - lonRange,
		MaxLon: center.Longitude + lonRange,
	}, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
