// Package geo provides coordinate handling and great-circle distance math
// for landmark ranking and nearby search.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// earthRadiusMeters is the mean Earth radius used for haversine distance.
const earthRadiusMeters = 6371000.0

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate is the unknown-location marker (0,0).
// Classification returns 0,0 when the detector knows the landmark but not
// where the photo was taken.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// String renders the coordinate in the compact "lat,lng" wire form used in
// scan records and query parameters.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Parse parses the "lat,lng" wire form into a Coordinate.
func Parse(s string) (Coordinate, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ",", 2)
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: want \"lat,lng\"", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}

	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}

	return Coordinate{Lat: lat, Lng: lng}, nil
}

// Distance returns the haversine great-circle distance between two
// coordinates in meters.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether b lies within radiusMeters of a.
// A radius of zero or less means unlimited.
func WithinRadius(a, b Coordinate, radiusMeters float64) bool {
	if radiusMeters <= 0 {
		return true
	}
	return Distance(a, b) <= radiusMeters
}
