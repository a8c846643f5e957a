// Package queries contains the read side of the dispatch engine. Queries
// never modify orders and never open a transaction.
package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
)

type (
	// OrderReader is the read half of ports.OrderRepository.
	OrderReader interface {
		Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
		List(ctx context.Context, filter ports.OrderFilter) ([]*order.Order, error)
	}

	// PresenceChecker reports whether a partner is online.
	PresenceChecker interface {
		IsOnline(ctx context.Context, partnerID kernel.UUID) (bool, error)
	}

	// OrderViewer derives the observer view of an order.
	OrderViewer interface {
		View(o *order.Order, now time.Time) (tracking.View, error)
	}
)

func viewAll(viewer OrderViewer, orders []*order.Order, now time.Time) ([]tracking.View, error) {
	views := make([]tracking.View, 0, len(orders))
	for _, o := range orders {
		v, err := viewer.View(o, now)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}
