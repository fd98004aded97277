package geo

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the fixed sphere radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

var (
	ErrInvalidLatitude  = errors.New("invalid latitude [-90, 90]")
	ErrInvalidLongitude = errors.New("invalid longitude [-180, 180]")
)

// Coordinate is a WGS84 point. Latitude/longitude order follows the
// external API surfaces; storage-level longitude-first ordering is the
// repository's concern.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects out-of-range coordinates. Values are never clamped.
func (c Coordinate) Validate() error {
	if math.Abs(c.Latitude) > 90 {
		return ErrInvalidLatitude
	}
	if math.Abs(c.Longitude) > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// Distance computes the great-circle distance between a and b in meters
// using the haversine formula. Both points are validated before any
// computation so out-of-range input never produces a plausible-looking
// number. Distance(a, a) is exactly 0, and the result is symmetric.
func Distance(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c, nil
}

// WithinRadius reports whether a and b lie within radiusMeters of each
// other (inclusive). A validation error from Distance is intentionally
// mapped to false rather than propagated: unverifiable proximity is
// treated as "not within radius" so callers gating on presence never
// have to handle a separate error path here.
func WithinRadius(a, b Coordinate, radiusMeters float64) bool {
	d, err := Distance(a, b)
	if err != nil {
		return false
	}
	return d <= radiusMeters
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
