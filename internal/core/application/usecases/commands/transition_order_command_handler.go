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

var errConcurrentChange = errors.New("order changed concurrently")

// TransitionOrderCommandHandler applies picked_up, delivered and cancelled.
//
// The write is conditional on the status the decision was made from. If a
// concurrent request moved the order first, the handler reloads it: when
// the order already sits in the target status the call is an idempotent
// success, otherwise it fails with errs.InvalidTransitionError from the
// fresh status.
type TransitionOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewTransitionOrderCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) error {
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

	from := o.Status()
	now := time.Now()
	if err = o.Transition(cmd.Target(), cmd.Actor(), now); err != nil {
		return err
	}

	if o.Changes().IsEmpty() {
		return uow.Commit(ctx)
	}

	affected, err := repo.ConditionalUpdate(ctx, o, ports.ExpectedState{
		Statuses: []order.Status{from},
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		fresh, getErr := repo.Get(ctx, cmd.OrderID())
		if getErr != nil {
			return getErr
		}
		if fresh.Status() == cmd.Target() {
			return uow.Commit(ctx)
		}
		return errs.NewInvalidTransitionErrorWithCause(fresh.Status(), cmd.Target(), errConcurrentChange)
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(cmd.Target().String()).Inc()
	h.announcer.Announce(ctx, ports.OrderStatusChanged, o, now)
	return nil
}
