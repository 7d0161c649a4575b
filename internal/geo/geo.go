package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

// Coordinates is a plain WGS84 point. It carries no identity and is safe to
// copy and compare.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the haversine great-circle distance between two points in
// meters. It is symmetric and returns 0 for identical points. Coordinates are
// assumed to be within valid ranges.
func Distance(a, b Coordinates) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180.0
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180.0)*math.Cos(b.Latitude*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// hotspot cells are 1/200 of a degree per side, roughly 550 m of latitude.
const cellsPerDegree = 200.0

// HotspotKey buckets a point into a fixed-size grid cell and returns a stable
// string key for it. Points inside the same cell collapse to the same key.
// The grid does not handle longitude wraparound at the antimeridian; fine for
// a single-city deployment.
func HotspotKey(c Coordinates) string {
	lat := math.Floor(c.Latitude*cellsPerDegree) / cellsPerDegree
	lng := math.Floor(c.Longitude*cellsPerDegree) / cellsPerDegree
	return fmt.Sprintf("%.3f:%.3f", lat, lng)
}
