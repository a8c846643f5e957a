package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

type RateDeliveryCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewRateDeliveryCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) RateDeliveryCommandHandler {
	return RateDeliveryCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

// Handle stores the rating only if the order is still delivered and
// unrated at write time; a second rating fails with order.ErrAlreadyRated.
func (h *RateDeliveryCommandHandler) Handle(ctx context.Context, cmd RateDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
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

	if err = o.RateDelivery(cmd.CustomerID(), cmd.Rating(), cmd.Feedback()); err != nil {
		return err
	}

	affected, err := repo.ConditionalUpdate(ctx, o, ports.ExpectedState{
		Statuses: []order.Status{order.Delivered},
		Unrated:  true,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return order.ErrAlreadyRated
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.announcer.Announce(ctx, ports.OrderRated, o, time.Now())
	return nil
}
