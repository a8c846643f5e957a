package zone

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Catalog is a read-only index of the campus reference data.
// It is safe for concurrent use once built.
type Catalog struct {
	zones     []Zone
	zoneIndex map[string]int
	pickups   map[string]PickupPoint
	waypoints []Waypoint
}

// NewCatalog indexes zones and pickups by code. Duplicate codes and an empty
// waypoint list are rejected.
func NewCatalog(zones []Zone, pickups []PickupPoint, waypoints []Waypoint) (*Catalog, error) {
	if len(zones) == 0 {
		return nil, errs.NewValueIsRequiredError("zones")
	}
	if len(pickups) == 0 {
		return nil, errs.NewValueIsRequiredError("pickups")
	}
	if len(waypoints) == 0 {
		return nil, errs.NewValueIsRequiredError("waypoints")
	}

	c := &Catalog{
		zoneIndex: make(map[string]int, len(zones)),
		pickups:   make(map[string]PickupPoint, len(pickups)),
		waypoints: append([]Waypoint(nil), waypoints...),
	}

	var errList []error
	for _, z := range zones {
		if _, dup := c.zoneIndex[z.Code()]; dup {
			errList = append(errList, errs.NewValueIsInvalidError("duplicate zone code "+z.Code()))
			continue
		}
		c.zoneIndex[z.Code()] = len(c.zones)
		c.zones = append(c.zones, z)
	}
	for _, p := range pickups {
		if _, dup := c.pickups[p.Code()]; dup {
			errList = append(errList, errs.NewValueIsInvalidError("duplicate pickup code "+p.Code()))
			continue
		}
		c.pickups[p.Code()] = p
	}
	for _, w := range waypoints {
		if err := w.Point.Validate(); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return c, nil
}

// Zone returns the zone with the given code or an ObjectNotFoundError.
func (c *Catalog) Zone(code string) (Zone, error) {
	i, ok := c.zoneIndex[code]
	if !ok {
		return Zone{}, errs.NewObjectNotFoundError("zone", code)
	}
	return c.zones[i], nil
}

// Zones returns all zones in catalog order.
func (c *Catalog) Zones() []Zone {
	return append([]Zone(nil), c.zones...)
}

func (c *Catalog) Pickup(code string) (PickupPoint, error) {
	p, ok := c.pickups[code]
	if !ok {
		return PickupPoint{}, errs.NewObjectNotFoundError("pickup", code)
	}
	return p, nil
}

func (c *Catalog) Waypoints() []Waypoint {
	return append([]Waypoint(nil), c.waypoints...)
}

// NearestWaypoint returns the waypoint closest to p by straight-line
// distance. Ties keep the earlier waypoint.
func (c *Catalog) NearestWaypoint(p kernel.Point) (Waypoint, error) {
	if err := p.Validate(); err != nil {
		return Waypoint{}, err
	}

	best := -1
	bestDistance := math.Inf(1)
	for i, w := range c.waypoints {
		d, err := p.DistanceTo(w.Point)
		if err != nil {
			return Waypoint{}, err
		}
		if d < bestDistance {
			best, bestDistance = i, d
		}
	}
	return c.waypoints[best], nil
}
