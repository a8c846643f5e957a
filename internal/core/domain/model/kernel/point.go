package kernel

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/geo"
	"dispatch/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrPointIsNotConstructed is returned when a Point was not built via NewPoint.
var ErrPointIsNotConstructed = errs.NewValueIsRequiredError("point must be created via NewPoint")

// Point is a validated WGS84 position in decimal degrees.
// The zero value is invalid.
type Point struct {
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewPoint validates the coordinates and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	p := Point{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return Point{}, err
	}

	return p, nil
}

// MustPoint is NewPoint for compile-time constants; it panics on invalid input.
func MustPoint(lat, lng float64) Point {
	p, err := NewPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Point) Validate() error {
	return p.guard.Validate(ErrPointIsNotConstructed)
}

func (p Point) Lat() float64 {
	return p.lat
}

func (p Point) Lng() float64 {
	return p.lng
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%.6f,%.6f)", p.lat, p.lng)
}

// IsEqual reports whether both points have identical coordinates.
func (p Point) IsEqual(other Point) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// DistanceTo returns the great-circle distance in meters.
func (p Point) DistanceTo(other Point) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}
	return geo.DistanceMeters(p.lat, p.lng, other.lat, other.lng), nil
}

// Towards returns the point at fraction t of the way to other, t clamped to [0,1].
func (p Point) Towards(other Point, t float64) (Point, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return Point{}, err
	}
	lat, lng := geo.Interpolate(p.lat, p.lng, other.lat, other.lng, t)
	return NewPoint(lat, lng)
}

func (p *Point) setLat(lat float64) error {
	if lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}
	p.lat = lat
	return nil
}

func (p *Point) setLng(lng float64) error {
	if lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}
	p.lng = lng
	return nil
}
