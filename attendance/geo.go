/*
geo.go - Office locations and great-circle containment

PURPOSE:
  Models the configured office locations and answers "is this coordinate
  inside the office geofence". Distance is great-circle (haversine) on a
  spherical Earth; detection radii are tens to hundreds of meters, where
  the spherical approximation error is far below GPS noise.
*/
package attendance

import "math"

// earthRadiusMeters is the mean Earth radius used for haversine distance.
const earthRadiusMeters = 6371000.0

// =============================================================================
// OFFICE LOCATION
// =============================================================================

// OfficeLocation is one configured office geofence. At most two locations
// are configured; the limit is enforced by the settings surface, not the
// type.
type OfficeLocation struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Coordinate      *GeoPoint `json:"coordinate,omitempty"`
	Address         string    `json:"address,omitempty"`
	DetectionRadius float64   `json:"detection_radius"` // meters
	IsPrimary       bool      `json:"is_primary"`
}

// Contains reports whether the point lies within the detection radius of
// the location. Always false for a location with no coordinate.
func (l OfficeLocation) Contains(p GeoPoint) bool {
	if l.Coordinate == nil {
		return false
	}
	return HaversineMeters(*l.Coordinate, p) <= l.DetectionRadius
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
