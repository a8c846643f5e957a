package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// OrderEventType names an entry of the order change log.
type OrderEventType string

const (
	OrderCreated          OrderEventType = "order.created"
	OrderClaimed          OrderEventType = "order.claimed"
	OrderStatusChanged    OrderEventType = "order.status_changed"
	OrderLocationReported OrderEventType = "order.location_reported"
	OrderRated            OrderEventType = "order.rated"
)

// OrderEvent is one committed change with the full order state after it.
type OrderEvent struct {
	Type       OrderEventType
	Order      order.Snapshot
	OccurredAt time.Time
}

// EventPublisher appends committed order changes to the event log.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
