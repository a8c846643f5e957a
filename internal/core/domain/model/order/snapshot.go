package order

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Snapshot is the full state of an order at one point in time. Observers
// always receive a complete snapshot, never a diff, and the store restores
// aggregates from it.
type Snapshot struct {
	ID         kernel.UUID
	CustomerID kernel.UUID
	PartnerID  *kernel.UUID

	PickupCode     string
	PickupPoint    kernel.Point
	DropoffZone    string
	DropoffPoint   kernel.Point
	DropoffDetails string

	Subtotal    kernel.Money
	DeliveryFee kernel.Money
	Total       kernel.Money

	Status      Status
	CreatedAt   time.Time
	AcceptedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time

	PartnerLocation    *kernel.Point
	LastLocationUpdate *time.Time

	Rating   *int
	Feedback string
}

// Snapshot copies the current state.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                 o.id,
		CustomerID:         o.customerID,
		PartnerID:          copyPtr(o.partnerID),
		PickupCode:         o.pickupCode,
		PickupPoint:        o.pickupPoint,
		DropoffZone:        o.dropoffZone,
		DropoffPoint:       o.dropoffPoint,
		DropoffDetails:     o.dropoffDetails,
		Subtotal:           o.subtotal,
		DeliveryFee:        o.deliveryFee,
		Total:              o.total,
		Status:             o.status,
		CreatedAt:          o.createdAt,
		AcceptedAt:         copyPtr(o.acceptedAt),
		PickedUpAt:         copyPtr(o.pickedUpAt),
		DeliveredAt:        copyPtr(o.deliveredAt),
		CancelledAt:        copyPtr(o.cancelledAt),
		PartnerLocation:    copyPtr(o.partnerLocation),
		LastLocationUpdate: copyPtr(o.lastLocationUpdate),
		Rating:             copyPtr(o.rating),
		Feedback:           o.feedback,
	}
}

// Equal compares two snapshots field by field, following pointers.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.ID.IsEqual(other.ID) &&
		s.CustomerID.IsEqual(other.CustomerID) &&
		equalPtr(s.PartnerID, other.PartnerID, kernel.UUID.IsEqual) &&
		s.PickupCode == other.PickupCode &&
		s.PickupPoint.IsEqual(other.PickupPoint) &&
		s.DropoffZone == other.DropoffZone &&
		s.DropoffPoint.IsEqual(other.DropoffPoint) &&
		s.DropoffDetails == other.DropoffDetails &&
		s.Subtotal.IsEqual(other.Subtotal) &&
		s.DeliveryFee.IsEqual(other.DeliveryFee) &&
		s.Total.IsEqual(other.Total) &&
		s.Status == other.Status &&
		s.CreatedAt.Equal(other.CreatedAt) &&
		equalPtr(s.AcceptedAt, other.AcceptedAt, time.Time.Equal) &&
		equalPtr(s.PickedUpAt, other.PickedUpAt, time.Time.Equal) &&
		equalPtr(s.DeliveredAt, other.DeliveredAt, time.Time.Equal) &&
		equalPtr(s.CancelledAt, other.CancelledAt, time.Time.Equal) &&
		equalPtr(s.PartnerLocation, other.PartnerLocation, kernel.Point.IsEqual) &&
		equalPtr(s.LastLocationUpdate, other.LastLocationUpdate, time.Time.Equal) &&
		equalPtr(s.Rating, other.Rating, func(a, b int) bool { return a == b }) &&
		s.Feedback == other.Feedback
}

// Precedes reports whether s is an older state of the same order than
// other. Status progress decides first, then the milestone times, then the
// last location update, then the rating.
func (s Snapshot) Precedes(other Snapshot) bool {
	if r, o := s.Status.rank(), other.Status.rank(); r != o {
		return r < o
	}
	for _, pair := range [][2]*time.Time{
		{s.AcceptedAt, other.AcceptedAt},
		{s.PickedUpAt, other.PickedUpAt},
		{s.DeliveredAt, other.DeliveredAt},
		{s.CancelledAt, other.CancelledAt},
		{s.LastLocationUpdate, other.LastLocationUpdate},
	} {
		if c := compareTime(pair[0], pair[1]); c != 0 {
			return c < 0
		}
	}
	return s.Rating == nil && other.Rating != nil
}

// compareTime orders nil before any time.
func compareTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func equalPtr[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}

// Changes is the set of fields an operation mutated. A nil field was not
// touched and must not be written.
type Changes struct {
	Status             *Status
	PartnerID          *kernel.UUID
	AcceptedAt         *time.Time
	PickedUpAt         *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	PartnerLocation    *kernel.Point
	LastLocationUpdate *time.Time
	Rating             *int
	Feedback           *string
}

// IsEmpty reports whether nothing was mutated.
func (c Changes) IsEmpty() bool {
	return c == Changes{}
}
