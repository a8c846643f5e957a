package http

import (
	"time"

	"dispatch/internal/adapters/out/codec"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/domain/model/zone"
)

type Zone struct {
	Code            string         `json:"code"`
	Name            string         `json:"name"`
	WalkTimeMinutes int            `json:"walk_time_minutes"`
	DeliveryFee     string         `json:"delivery_fee"`
	Location        codec.Location `json:"location"`
}

type NewOrder struct {
	PickupCode string `json:"pickup_code"`
	ZoneCode   string `json:"zone_code"`
	Details    string `json:"details"`
	Subtotal   string `json:"subtotal"`
}

type NewTransition struct {
	Status string `json:"status"`
}

type NewLocation struct {
	Lat        float64    `json:"lat"`
	Lng        float64    `json:"lng"`
	ObservedAt *time.Time `json:"observed_at,omitempty"`
}

type NewRating struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

type Availability struct {
	Online bool `json:"online"`
}

type ETA struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Minutes         int     `json:"minutes"`
}

type Staleness struct {
	AgeSeconds float64 `json:"age_seconds"`
	HasReport  bool    `json:"has_report"`
	Stale      bool    `json:"stale"`
}

// TrackingView is an order as shown to its customer or partner.
type TrackingView struct {
	Order     codec.Snapshot `json:"order"`
	ETA       *ETA           `json:"eta"`
	Staleness Staleness      `json:"staleness"`
}

func toZone(z zone.Zone) Zone {
	return Zone{
		Code:            z.Code(),
		Name:            z.Name(),
		WalkTimeMinutes: z.WalkTimeMinutes(),
		DeliveryFee:     z.DeliveryFee().String(),
		Location:        codec.LocationOf(z.Point()),
	}
}

func toTrackingView(v tracking.View) TrackingView {
	out := TrackingView{
		Order: codec.FromSnapshot(v.Order),
		Staleness: Staleness{
			AgeSeconds: v.Staleness.Age.Seconds(),
			HasReport:  v.Staleness.HasReport,
			Stale:      v.Staleness.Stale,
		},
	}
	if v.ETA != nil {
		out.ETA = &ETA{
			DistanceMeters:  v.ETA.DistanceMeters,
			DurationSeconds: v.ETA.DurationSeconds(),
			Minutes:         v.ETA.RoundedMinutes(),
		}
	}
	return out
}

func toTrackingViews(views []tracking.View) []TrackingView {
	out := make([]TrackingView, len(views))
	for i, v := range views {
		out[i] = toTrackingView(v)
	}
	return out
}
