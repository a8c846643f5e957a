// Package geo holds the pure geometry helpers behind the ETA estimate and
// the simulated route. Inputs are decimal degrees, outputs are SI units.
package geo

import (
	"math"
	"time"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
	EarthRadiusMeters = 6371008.8
	// WalkingSpeedMetersPerSecond is the assumed pace of a delivery partner on foot.
	WalkingSpeedMetersPerSecond = 1.4
)

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// Interpolate returns the point at fraction t along the straight segment a->b.
// t is clamped to [0, 1].
func Interpolate(lat1, lng1, lat2, lng2, t float64) (float64, float64) {
	t = math.Max(0, math.Min(1, t))
	return lat1 + (lat2-lat1)*t, lng1 + (lng2-lng1)*t
}

// WalkingDuration converts a walking distance into a duration at
// WalkingSpeedMetersPerSecond. Negative distances yield zero.
func WalkingDuration(meters float64) time.Duration {
	if meters <= 0 {
		return 0
	}
	seconds := meters / WalkingSpeedMetersPerSecond
	return time.Duration(seconds * float64(time.Second))
}
