package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/guard"
)

var ErrReportLocationCommandIsNotConstructed = errors.New(
	"ReportLocationCommand must be created via NewReportLocationCommand constructor",
)

// ReportLocationCommand carries one position fix of the partner delivering
// an order, from a real device or from the route simulator.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	partnerID kernel.UUID
	report    tracking.LocationReport

	guard guard.ConstructorGuard
}

func NewReportLocationCommand(
	orderID, partnerID kernel.UUID,
	report tracking.LocationReport,
) (ReportLocationCommand, error) {
	cmd := ReportLocationCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setPartnerID(partnerID),
		cmd.setReport(report),
	); err != nil {
		return ReportLocationCommand{}, err
	}

	return cmd, nil
}

func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

func (c ReportLocationCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ReportLocationCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

func (c ReportLocationCommand) Report() tracking.LocationReport {
	return c.report
}

func (c *ReportLocationCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *ReportLocationCommand) setPartnerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.partnerID = id
	return nil
}

func (c *ReportLocationCommand) setReport(r tracking.LocationReport) error {
	if err := r.Position.Validate(); err != nil {
		return err
	}
	c.report = r
	return nil
}
