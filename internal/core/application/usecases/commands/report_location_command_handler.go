package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

// ReportLocationCommandHandler folds a location report into the order.
//
// Reports are last-write-wins by arrival. The write is conditional on the
// reporting partner still owning an accepted or picked_up order, and only
// touches the tracking columns, so it never overwrites a concurrent status
// change. A report that loses that race fails with errs.InvalidStateError.
type ReportLocationCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewReportLocationCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h *ReportLocationCommandHandler) Handle(ctx context.Context, cmd ReportLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := h.handle(ctx, cmd)
	if err != nil {
		metrics.LocationReportsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.LocationReportsTotal.WithLabelValues("accepted").Inc()
	return nil
}

func (h *ReportLocationCommandHandler) handle(ctx context.Context, cmd ReportLocationCommand) error {
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

	now := time.Now()
	partnerID := cmd.PartnerID()
	if err = o.ReportLocation(partnerID, cmd.Report().Position, now); err != nil {
		return err
	}

	affected, err := repo.ConditionalUpdate(ctx, o, ports.ExpectedState{
		Statuses:  []order.Status{order.Accepted, order.PickedUp},
		PartnerID: &partnerID,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		fresh, getErr := repo.Get(ctx, cmd.OrderID())
		if getErr != nil {
			return getErr
		}
		return errs.NewInvalidStateError(fresh.ID(), fresh.Status())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.announcer.Announce(ctx, ports.OrderLocationReported, o, now)
	return nil
}
