// Package catalog loads the campus reference data: delivery zones, pickup
// points, ETA waypoints and the simulated partner route.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

//go:embed campus.yaml
var defaultCampus []byte

// Campus is the parsed reference data.
type Campus struct {
	Catalog *zone.Catalog
	Route   []tracking.RouteStep
}

type document struct {
	Pickups   []pickupDTO   `yaml:"pickups"`
	Zones     []zoneDTO     `yaml:"zones"`
	Waypoints []waypointDTO `yaml:"waypoints"`
	Route     []stepDTO     `yaml:"route"`
}

type pickupDTO struct {
	Code string  `yaml:"code"`
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

type zoneDTO struct {
	Code            string  `yaml:"code"`
	Name            string  `yaml:"name"`
	WalkTimeMinutes int     `yaml:"walk_time_minutes"`
	DeliveryFee     string  `yaml:"delivery_fee"`
	Lat             float64 `yaml:"lat"`
	Lng             float64 `yaml:"lng"`
}

type waypointDTO struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

type stepDTO struct {
	Name  string  `yaml:"name"`
	Phase string  `yaml:"phase"`
	Lat   float64 `yaml:"lat"`
	Lng   float64 `yaml:"lng"`
}

// Default returns the embedded CUHK campus.
func Default() (*Campus, error) {
	return Parse(defaultCampus)
}

// Parse decodes a campus document. Every invalid entry is reported.
func Parse(data []byte) (*Campus, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode campus: %w", err)
	}

	var errList []error

	pickups := make([]zone.PickupPoint, 0, len(doc.Pickups))
	for _, p := range doc.Pickups {
		point, err := kernel.NewPoint(p.Lat, p.Lng)
		if err != nil {
			errList = append(errList, fmt.Errorf("pickup %q: %w", p.Code, err))
			continue
		}
		pickup, err := zone.NewPickupPoint(p.Code, p.Name, point)
		if err != nil {
			errList = append(errList, fmt.Errorf("pickup %q: %w", p.Code, err))
			continue
		}
		pickups = append(pickups, pickup)
	}

	zones := make([]zone.Zone, 0, len(doc.Zones))
	for _, z := range doc.Zones {
		parsed, err := z.toDomain()
		if err != nil {
			errList = append(errList, fmt.Errorf("zone %q: %w", z.Code, err))
			continue
		}
		zones = append(zones, parsed)
	}

	waypoints := make([]zone.Waypoint, 0, len(doc.Waypoints))
	for _, w := range doc.Waypoints {
		point, err := kernel.NewPoint(w.Lat, w.Lng)
		if err != nil {
			errList = append(errList, fmt.Errorf("waypoint %q: %w", w.Name, err))
			continue
		}
		waypoints = append(waypoints, zone.Waypoint{Name: w.Name, Point: point})
	}

	route := make([]tracking.RouteStep, 0, len(doc.Route))
	for i, s := range doc.Route {
		phase := tracking.Phase(s.Phase)
		if !phase.IsValid() {
			errList = append(errList, fmt.Errorf("route step %d: %w", i, errs.NewValueIsInvalidError("phase "+s.Phase)))
			continue
		}
		point, err := kernel.NewPoint(s.Lat, s.Lng)
		if err != nil {
			errList = append(errList, fmt.Errorf("route step %d: %w", i, err))
			continue
		}
		route = append(route, tracking.RouteStep{Name: s.Name, Phase: phase, Point: point})
	}

	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	c, err := zone.NewCatalog(zones, pickups, waypoints)
	if err != nil {
		return nil, err
	}
	return &Campus{Catalog: c, Route: route}, nil
}

func (z zoneDTO) toDomain() (zone.Zone, error) {
	fee, err := kernel.MoneyFromString(z.DeliveryFee)
	if err != nil {
		return zone.Zone{}, err
	}
	point, err := kernel.NewPoint(z.Lat, z.Lng)
	if err != nil {
		return zone.Zone{}, err
	}
	return zone.NewZone(z.Code, z.Name, z.WalkTimeMinutes, fee, point)
}
