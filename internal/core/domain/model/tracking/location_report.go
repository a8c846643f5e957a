package tracking

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// LocationReport is one position fix from a partner device or the route
// simulator. It is folded into the order and never stored on its own.
type LocationReport struct {
	Position   kernel.Point
	ObservedAt time.Time
}

func NewLocationReport(lat, lng float64, observedAt time.Time) (LocationReport, error) {
	p, err := kernel.NewPoint(lat, lng)
	if err != nil {
		return LocationReport{}, err
	}
	if observedAt.IsZero() {
		return LocationReport{}, errs.NewValueIsRequiredError("observedAt")
	}
	return LocationReport{Position: p, ObservedAt: observedAt}, nil
}

// LocationSource yields the next report to submit, or false when there is
// nothing new. Implementations are owned by a single reporting session.
type LocationSource interface {
	Next(now time.Time) (LocationReport, bool)
}
