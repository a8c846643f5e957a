// Package codec is the JSON form of order snapshots shared by the Redis
// push transport, the Kafka change log and the HTTP API.
package codec

import (
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Location is a point on the wire.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Snapshot is order.Snapshot on the wire. Amounts are decimal strings.
type Snapshot struct {
	ID                 string     `json:"id"`
	CustomerID         string     `json:"customer_id"`
	PartnerID          *string    `json:"partner_id"`
	PickupCode         string     `json:"pickup_code"`
	PickupLocation     Location   `json:"pickup_location"`
	DropoffZone        string     `json:"dropoff_zone"`
	DropoffLocation    Location   `json:"dropoff_location"`
	DropoffDetails     string     `json:"dropoff_details,omitempty"`
	Subtotal           string     `json:"subtotal"`
	DeliveryFee        string     `json:"delivery_fee"`
	Total              string     `json:"total"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	AcceptedAt         *time.Time `json:"accepted_at"`
	PickedUpAt         *time.Time `json:"picked_up_at"`
	DeliveredAt        *time.Time `json:"delivered_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	PartnerLocation    *Location  `json:"partner_location"`
	LastLocationUpdate *time.Time `json:"last_location_update"`
	Rating             *int       `json:"customer_rating"`
	Feedback           string     `json:"customer_feedback,omitempty"`
}

func LocationOf(p kernel.Point) Location {
	return Location{Lat: p.Lat(), Lng: p.Lng()}
}

func (l Location) Point() (kernel.Point, error) {
	return kernel.NewPoint(l.Lat, l.Lng)
}

func FromSnapshot(s order.Snapshot) Snapshot {
	out := Snapshot{
		ID:                 s.ID.String(),
		CustomerID:         s.CustomerID.String(),
		PickupCode:         s.PickupCode,
		PickupLocation:     LocationOf(s.PickupPoint),
		DropoffZone:        s.DropoffZone,
		DropoffLocation:    LocationOf(s.DropoffPoint),
		DropoffDetails:     s.DropoffDetails,
		Subtotal:           s.Subtotal.String(),
		DeliveryFee:        s.DeliveryFee.String(),
		Total:              s.Total.String(),
		Status:             s.Status.String(),
		CreatedAt:          s.CreatedAt,
		AcceptedAt:         s.AcceptedAt,
		PickedUpAt:         s.PickedUpAt,
		DeliveredAt:        s.DeliveredAt,
		CancelledAt:        s.CancelledAt,
		LastLocationUpdate: s.LastLocationUpdate,
		Rating:             s.Rating,
		Feedback:           s.Feedback,
	}
	if s.PartnerID != nil {
		id := s.PartnerID.String()
		out.PartnerID = &id
	}
	if s.PartnerLocation != nil {
		loc := LocationOf(*s.PartnerLocation)
		out.PartnerLocation = &loc
	}
	return out
}

// ToSnapshot validates every field and reports all failures together.
func (s Snapshot) ToSnapshot() (order.Snapshot, error) {
	var out order.Snapshot
	var errList []error
	collect := func(err error) {
		if err != nil {
			errList = append(errList, err)
		}
	}

	var err error
	out.ID, err = kernel.UUIDFromString(s.ID)
	collect(err)
	out.CustomerID, err = kernel.UUIDFromString(s.CustomerID)
	collect(err)
	if s.PartnerID != nil {
		id, idErr := kernel.UUIDFromString(*s.PartnerID)
		collect(idErr)
		out.PartnerID = &id
	}

	out.PickupCode = s.PickupCode
	out.PickupPoint, err = s.PickupLocation.Point()
	collect(err)
	out.DropoffZone = s.DropoffZone
	out.DropoffPoint, err = s.DropoffLocation.Point()
	collect(err)
	out.DropoffDetails = s.DropoffDetails

	out.Subtotal, err = kernel.MoneyFromString(s.Subtotal)
	collect(err)
	out.DeliveryFee, err = kernel.MoneyFromString(s.DeliveryFee)
	collect(err)
	out.Total, err = kernel.MoneyFromString(s.Total)
	collect(err)

	out.Status, err = order.ParseStatus(s.Status)
	collect(err)

	out.CreatedAt = s.CreatedAt.UTC()
	out.AcceptedAt = utc(s.AcceptedAt)
	out.PickedUpAt = utc(s.PickedUpAt)
	out.DeliveredAt = utc(s.DeliveredAt)
	out.CancelledAt = utc(s.CancelledAt)
	out.LastLocationUpdate = utc(s.LastLocationUpdate)

	if s.PartnerLocation != nil {
		p, pErr := s.PartnerLocation.Point()
		collect(pErr)
		out.PartnerLocation = &p
	}
	if s.Rating != nil {
		r := *s.Rating
		out.Rating = &r
	}
	out.Feedback = s.Feedback

	if err = errors.Join(errList...); err != nil {
		return order.Snapshot{}, err
	}
	return out, nil
}

func MarshalSnapshot(s order.Snapshot) ([]byte, error) {
	return json.Marshal(FromSnapshot(s))
}

func UnmarshalSnapshot(data []byte) (order.Snapshot, error) {
	var dto Snapshot
	if err := json.Unmarshal(data, &dto); err != nil {
		return order.Snapshot{}, err
	}
	return dto.ToSnapshot()
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
