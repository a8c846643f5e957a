package services

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/pkg/geo"
)

// DetourFactor inflates straight-line legs to approximate campus paths.
const DetourFactor = 1.2

// ErrNoWaypoints is returned when the estimator has nothing to route through.
var ErrNoWaypoints = errors.New("eta estimator requires a waypoint finder")

// WaypointFinder resolves the campus waypoint closest to a point.
type WaypointFinder interface {
	NearestWaypoint(p kernel.Point) (zone.Waypoint, error)
}

// ETAEstimator derives distance and walking time as
//
//	(|from → w| + |w → to|) × DetourFactor
//
// where w is the waypoint nearest to the destination. Results are never
// cached; every call reflects the position it is given.
type ETAEstimator struct {
	waypoints WaypointFinder
}

func NewETAEstimator(waypoints WaypointFinder) (*ETAEstimator, error) {
	if waypoints == nil {
		return nil, ErrNoWaypoints
	}
	return &ETAEstimator{waypoints: waypoints}, nil
}

// Estimate returns the estimate between two arbitrary points.
func (e *ETAEstimator) Estimate(from, to kernel.Point) (tracking.Estimate, error) {
	w, err := e.waypoints.NearestWaypoint(to)
	if err != nil {
		return tracking.Estimate{}, err
	}

	toWaypoint, err := from.DistanceTo(w.Point)
	if err != nil {
		return tracking.Estimate{}, err
	}
	fromWaypoint, err := w.Point.DistanceTo(to)
	if err != nil {
		return tracking.Estimate{}, err
	}

	distance := (toWaypoint + fromWaypoint) * DetourFactor
	return tracking.Estimate{
		DistanceMeters: distance,
		Duration:       geo.WalkingDuration(distance),
	}, nil
}

// EstimateOrder estimates the remaining leg of an order. Pending orders are
// measured from the pickup point; claimed orders from the last reported
// partner position, falling back to the pickup point. Terminal orders have
// no estimate and yield nil.
func (e *ETAEstimator) EstimateOrder(o *order.Order) (*tracking.Estimate, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Status().IsTerminal() {
		return nil, nil //nolint:nilnil // no estimate for closed orders
	}

	from := o.PickupPoint()
	if o.Status() != order.Pending {
		if pos := o.PartnerLocation(); pos != nil {
			from = *pos
		}
	}

	est, err := e.Estimate(from, o.DropoffPoint())
	if err != nil {
		return nil, err
	}
	return &est, nil
}
