package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"
)

// GetOrderTrackingQueryHandler reads an order and derives its estimate and
// staleness. The estimate is recomputed on every call.
type GetOrderTrackingQueryHandler struct {
	orders OrderReader
	viewer OrderViewer
}

func NewGetOrderTrackingQueryHandler(orders OrderReader, viewer OrderViewer) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{orders: orders, viewer: viewer}
}

// Handle returns errs.ObjectNotFoundError for unknown orders and
// errs.NotAuthorizedError when the viewer is not a party to the order.
func (h GetOrderTrackingQueryHandler) Handle(ctx context.Context, query GetOrderTrackingQuery) (tracking.View, error) {
	if err := query.Validate(); err != nil {
		return tracking.View{}, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return tracking.View{}, err
	}
	if !o.IsParty(query.Viewer()) {
		return tracking.View{}, errs.NewNotAuthorizedError(query.Viewer(), o.ID(), "view order")
	}

	return h.viewer.View(o, time.Now())
}
