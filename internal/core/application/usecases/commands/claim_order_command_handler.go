package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

// ClaimOrderCommandHandler arbitrates concurrent claims on a pending order.
//
// The local read only rejects claims that are already known to lose. The
// decision is made by a conditional update that requires the stored order
// to still be pending and unclaimed; when it affects zero rows another
// partner won and the caller gets errs.AlreadyClaimedError. Claims are never
// retried.
type ClaimOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	presence   ports.PartnerPresence
	announcer  *Announcer
}

func NewClaimOrderCommandHandler(
	uowFactory OrderUoWFactory,
	presence ports.PartnerPresence,
	announcer *Announcer,
) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		presence:   presence,
		announcer:  announcer,
	}
}

func (h *ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	online, err := h.presence.IsOnline(ctx, cmd.PartnerID())
	if err != nil {
		return err
	}
	if !online {
		metrics.ClaimsTotal.WithLabelValues("rejected").Inc()
		return errs.NewPartnerOfflineError(cmd.PartnerID())
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := time.Now()
	if err = o.Claim(cmd.PartnerID(), now); err != nil {
		if errors.Is(err, errs.ErrAlreadyClaimed) {
			metrics.ClaimsTotal.WithLabelValues("lost").Inc()
		}
		return err
	}

	affected, err := repo.ConditionalUpdate(ctx, o, ports.ExpectedState{
		Statuses:  []order.Status{order.Pending},
		Unclaimed: true,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		metrics.ClaimsTotal.WithLabelValues("lost").Inc()
		return errs.NewAlreadyClaimedError(o.ID())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.ClaimsTotal.WithLabelValues("won").Inc()
	h.announcer.Announce(ctx, ports.OrderClaimed, o, now)
	return nil
}
