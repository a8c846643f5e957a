package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler prices and stores a new pending order, then
// announces it so the offer list of online partners refreshes.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	catalog    ZoneCatalog
	announcer  *Announcer
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	catalog ZoneCatalog,
	announcer *Announcer,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		announcer:  announcer,
	}
}

// Handle fails with errs.ObjectNotFoundError for unknown pickup or zone codes.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	pickup, err := h.catalog.Pickup(cmd.PickupCode())
	if err != nil {
		return err
	}
	dropoff, err := h.catalog.Zone(cmd.ZoneCode())
	if err != nil {
		return err
	}

	now := time.Now()
	o, err := order.NewOrder(cmd.OrderID(), cmd.CustomerID(), pickup, dropoff, cmd.Details(), cmd.Subtotal(), now)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.announcer.Announce(ctx, ports.OrderCreated, o, now)
	return nil
}
