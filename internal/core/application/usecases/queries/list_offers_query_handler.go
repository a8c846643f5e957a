package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ListOffersQueryHandler exposes pending orders to online partners, oldest
// first. An offer is only a hint: the claim itself is arbitrated by the
// conditional update, so a listed order may already be gone.
type ListOffersQueryHandler struct {
	orders   OrderReader
	presence PresenceChecker
	viewer   OrderViewer
}

func NewListOffersQueryHandler(orders OrderReader, presence PresenceChecker, viewer OrderViewer) ListOffersQueryHandler {
	return ListOffersQueryHandler{orders: orders, presence: presence, viewer: viewer}
}

// Handle fails with errs.PartnerOfflineError when the partner is offline.
func (h ListOffersQueryHandler) Handle(ctx context.Context, query ListOffersQuery) ([]tracking.View, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	online, err := h.presence.IsOnline(ctx, query.PartnerID())
	if err != nil {
		return nil, err
	}
	if !online {
		return nil, errs.NewPartnerOfflineError(query.PartnerID())
	}

	pending, err := h.orders.List(ctx, ports.OrderFilter{Statuses: []order.Status{order.Pending}})
	if err != nil {
		return nil, err
	}
	return viewAll(h.viewer, pending, time.Now())
}
