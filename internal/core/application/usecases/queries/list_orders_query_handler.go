package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
)

type ListOrdersQueryHandler struct {
	orders OrderReader
	viewer OrderViewer
}

func NewListOrdersQueryHandler(orders OrderReader, viewer OrderViewer) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{orders: orders, viewer: viewer}
}

// Handle returns the matching orders oldest first.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]tracking.View, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	actor := query.Actor()
	filter := ports.OrderFilter{
		Statuses: query.Statuses(),
		Limit:    query.Limit(),
	}
	switch query.Role() {
	case AsCustomer:
		filter.CustomerID = &actor
	case AsPartner:
		filter.PartnerID = &actor
	}

	found, err := h.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return viewAll(h.viewer, found, time.Now())
}
