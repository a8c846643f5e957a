// Package zone holds the immutable campus reference data: drop-off zones,
// pickup points and the named waypoints used by the ETA estimate.
package zone

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Zone is a named drop-off area with a fixed fee and walking time.
type Zone struct {
	code            string
	name            string
	walkTimeMinutes int
	deliveryFee     kernel.Money
	point           kernel.Point
}

func NewZone(code, name string, walkTimeMinutes int, fee kernel.Money, point kernel.Point) (Zone, error) {
	var errList []error
	if strings.TrimSpace(code) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("zone code"))
	}
	if strings.TrimSpace(name) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("zone name"))
	}
	if walkTimeMinutes < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("walkTimeMinutes",
			fmt.Errorf("%d is negative", walkTimeMinutes)))
	}
	if err := point.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return Zone{}, err
	}

	return Zone{
		code:            code,
		name:            name,
		walkTimeMinutes: walkTimeMinutes,
		deliveryFee:     fee,
		point:           point,
	}, nil
}

func (z Zone) Code() string { return z.code }
func (z Zone) Name() string { return z.name }
func (z Zone) WalkTimeMinutes() int { return z.walkTimeMinutes }
func (z Zone) DeliveryFee() kernel.Money { return z.deliveryFee }
func (z Zone) Point() kernel.Point { return z.point }

// PickupPoint is where partners collect orders.
type PickupPoint struct {
	code  string
	name  string
	point kernel.Point
}

func NewPickupPoint(code, name string, point kernel.Point) (PickupPoint, error) {
	var errList []error
	if strings.TrimSpace(code) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("pickup code"))
	}
	if err := point.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return PickupPoint{}, err
	}
	return PickupPoint{code: code, name: name, point: point}, nil
}

func (p PickupPoint) Code() string        { return p.code }
func (p PickupPoint) Name() string        { return p.name }
func (p PickupPoint) Point() kernel.Point { return p.point }

// Waypoint is a named campus location the ETA estimate routes through.
type Waypoint struct {
	Name  string
	Point kernel.Point
}
