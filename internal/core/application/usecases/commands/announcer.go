package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"

	"go.uber.org/zap"
)

// SnapshotNotifier pushes a committed snapshot to the observers of an order.
type SnapshotNotifier interface {
	Notify(ctx context.Context, snapshot order.Snapshot) error
}

// Announcer fans a committed change out to observers and to the event log.
// Both are advisory: failures are logged, never returned to the caller,
// because the write itself already succeeded.
type Announcer struct {
	notifier SnapshotNotifier
	events   ports.EventPublisher
	log      *zap.Logger
}

// NewAnnouncer accepts nil notifier or events to disable that channel.
func NewAnnouncer(notifier SnapshotNotifier, events ports.EventPublisher, log *zap.Logger) *Announcer {
	return &Announcer{
		notifier: notifier,
		events:   events,
		log:      logger.Component(log, "announcer"),
	}
}

func (a *Announcer) Announce(ctx context.Context, eventType ports.OrderEventType, o *order.Order, at time.Time) {
	if a == nil {
		return
	}
	snapshot := o.Snapshot()

	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, snapshot); err != nil {
			a.log.Warn("failed to notify observers",
				zap.String("order_id", snapshot.ID.String()), zap.Error(err))
		}
	}

	if a.events != nil {
		event := ports.OrderEvent{Type: eventType, Order: snapshot, OccurredAt: at}
		if err := a.events.Publish(ctx, event); err != nil {
			a.log.Warn("failed to publish order event",
				zap.String("order_id", snapshot.ID.String()),
				zap.String("event", string(eventType)),
				zap.Error(err))
		}
	}
}
