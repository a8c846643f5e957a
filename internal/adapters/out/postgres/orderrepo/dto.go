// Package orderrepo persists order aggregates. Reads restore the aggregate
// through order.RestoreOrder so that a corrupt row fails at this boundary;
// writes are either a full insert or a conditional update of the changed
// columns only.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table. Statuses are stored by name so
// raw queries and operators can read them.
type OrderDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	PartnerID  *uuid.UUID `gorm:"type:uuid;index"`

	PickupCode     string   `gorm:"not null"`
	Pickup         PointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	DropoffZone    string   `gorm:"not null"`
	Dropoff        PointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	DropoffDetails string

	Subtotal    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Total       decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Status      string    `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	AcceptedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time

	PartnerLat         *float64
	PartnerLng         *float64
	LastLocationUpdate *time.Time

	Rating   *int
	Feedback string
}

func (OrderDTO) TableName() string {
	return "orders"
}

// PointDTO is an embedded latitude/longitude pair.
type PointDTO struct {
	Lat float64
	Lng float64
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	dto := OrderDTO{
		ID:             s.ID.Bytes(),
		CustomerID:     s.CustomerID.Bytes(),
		PickupCode:     s.PickupCode,
		Pickup:         PointDTO{Lat: s.PickupPoint.Lat(), Lng: s.PickupPoint.Lng()},
		DropoffZone:    s.DropoffZone,
		Dropoff:        PointDTO{Lat: s.DropoffPoint.Lat(), Lng: s.DropoffPoint.Lng()},
		DropoffDetails: s.DropoffDetails,
		Subtotal:       s.Subtotal.Decimal(),
		DeliveryFee:    s.DeliveryFee.Decimal(),
		Total:          s.Total.Decimal(),
		Status:         s.Status.String(),
		CreatedAt:      s.CreatedAt,
		AcceptedAt:     s.AcceptedAt,
		PickedUpAt:     s.PickedUpAt,
		DeliveredAt:    s.DeliveredAt,
		CancelledAt:    s.CancelledAt,

		LastLocationUpdate: s.LastLocationUpdate,
		Rating:             s.Rating,
		Feedback:           s.Feedback,
	}

	if s.PartnerID != nil {
		raw := s.PartnerID.Bytes()
		dto.PartnerID = &raw
	}
	if s.PartnerLocation != nil {
		lat, lng := s.PartnerLocation.Lat(), s.PartnerLocation.Lng()
		dto.PartnerLat = &lat
		dto.PartnerLng = &lng
	}

	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	s, err := toSnapshot(dto)
	if err != nil {
		return nil, err
	}
	return order.RestoreOrder(s)
}

func toSnapshot(dto OrderDTO) (order.Snapshot, error) {
	var s order.Snapshot
	var err error

	if s.ID, err = kernel.UUIDFromGoogle(dto.ID); err != nil {
		return s, err
	}
	if s.CustomerID, err = kernel.UUIDFromGoogle(dto.CustomerID); err != nil {
		return s, err
	}
	if dto.PartnerID != nil {
		partnerID, idErr := kernel.UUIDFromGoogle(*dto.PartnerID)
		if idErr != nil {
			return s, idErr
		}
		s.PartnerID = &partnerID
	}

	if s.PickupPoint, err = kernel.NewPoint(dto.Pickup.Lat, dto.Pickup.Lng); err != nil {
		return s, err
	}
	if s.DropoffPoint, err = kernel.NewPoint(dto.Dropoff.Lat, dto.Dropoff.Lng); err != nil {
		return s, err
	}
	if s.Subtotal, err = kernel.NewMoney(dto.Subtotal); err != nil {
		return s, err
	}
	if s.DeliveryFee, err = kernel.NewMoney(dto.DeliveryFee); err != nil {
		return s, err
	}
	if s.Total, err = kernel.NewMoney(dto.Total); err != nil {
		return s, err
	}
	if s.Status, err = order.ParseStatus(dto.Status); err != nil {
		return s, err
	}

	if dto.PartnerLat != nil && dto.PartnerLng != nil {
		pos, posErr := kernel.NewPoint(*dto.PartnerLat, *dto.PartnerLng)
		if posErr != nil {
			return s, posErr
		}
		s.PartnerLocation = &pos
	}

	s.PickupCode = dto.PickupCode
	s.DropoffZone = dto.DropoffZone
	s.DropoffDetails = dto.DropoffDetails
	s.CreatedAt = dto.CreatedAt.UTC()
	s.AcceptedAt = utc(dto.AcceptedAt)
	s.PickedUpAt = utc(dto.PickedUpAt)
	s.DeliveredAt = utc(dto.DeliveredAt)
	s.CancelledAt = utc(dto.CancelledAt)
	s.LastLocationUpdate = utc(dto.LastLocationUpdate)
	s.Rating = dto.Rating
	s.Feedback = dto.Feedback

	return s, nil
}

// changedColumns maps a change set onto column assignments.
func changedColumns(c order.Changes) map[string]any {
	columns := make(map[string]any)
	if c.Status != nil {
		columns["status"] = c.Status.String()
	}
	if c.PartnerID != nil {
		columns["partner_id"] = c.PartnerID.Bytes()
	}
	if c.AcceptedAt != nil {
		columns["accepted_at"] = *c.AcceptedAt
	}
	if c.PickedUpAt != nil {
		columns["picked_up_at"] = *c.PickedUpAt
	}
	if c.DeliveredAt != nil {
		columns["delivered_at"] = *c.DeliveredAt
	}
	if c.CancelledAt != nil {
		columns["cancelled_at"] = *c.CancelledAt
	}
	if c.PartnerLocation != nil {
		columns["partner_lat"] = c.PartnerLocation.Lat()
		columns["partner_lng"] = c.PartnerLocation.Lng()
	}
	if c.LastLocationUpdate != nil {
		columns["last_location_update"] = *c.LastLocationUpdate
	}
	if c.Rating != nil {
		columns["rating"] = *c.Rating
	}
	if c.Feedback != nil {
		columns["feedback"] = *c.Feedback
	}
	return columns
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
