package services

import (
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
)

// TrackingViewer builds observer views of orders, recomputing the
// estimate on every call.
type TrackingViewer struct {
	eta        *ETAEstimator
	staleAfter time.Duration
}

func NewTrackingViewer(eta *ETAEstimator, staleAfter time.Duration) *TrackingViewer {
	return &TrackingViewer{eta: eta, staleAfter: staleAfter}
}

func (v *TrackingViewer) StaleAfter() time.Duration {
	return v.staleAfter
}

func (v *TrackingViewer) View(o *order.Order, now time.Time) (tracking.View, error) {
	est, err := v.eta.EstimateOrder(o)
	if err != nil {
		return tracking.View{}, err
	}
	return tracking.View{
		Order:     o.Snapshot(),
		ETA:       est,
		Staleness: tracking.AssessStaleness(o, now, v.staleAfter),
	}, nil
}
