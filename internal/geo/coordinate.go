// Package geo provides the coordinate types, the static city geocoder and the
// Haversine distance used by proximity search.
package geo

import "fmt"

// Coordinate is an immutable WGS 84 point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies inside the legal lat/lng ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.Latitude, c.Longitude)
}

// Bounds is a lat/lng bounding box. When MinLng > MaxLng the box crosses the
// antimeridian.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Valid reports whether the box is well formed.
func (b Bounds) Valid() bool {
	return b.MinLat <= b.MaxLat &&
		Coordinate{b.MinLat, b.MinLng}.Valid() &&
		Coordinate{b.MaxLat, b.MaxLng}.Valid()
}

// Contains reports whether c lies inside the box, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	if c.Latitude < b.MinLat || c.Latitude > b.MaxLat {
		return false
	}
	if b.MinLng <= b.MaxLng {
		return c.Longitude >= b.MinLng && c.Longitude <= b.MaxLng
	}
	return c.Longitude >= b.MinLng || c.Longitude <= b.MaxLng
}
