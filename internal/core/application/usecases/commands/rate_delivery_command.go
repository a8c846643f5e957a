package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRateDeliveryCommandIsNotConstructed = errors.New(
	"RateDeliveryCommand must be created via NewRateDeliveryCommand constructor",
)

// RateDeliveryCommand records the customer's 1 to 5 rating of a delivered order.
// Range checks live in the aggregate.
type RateDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	customerID kernel.UUID
	rating     int
	feedback   string

	guard guard.ConstructorGuard
}

func NewRateDeliveryCommand(orderID, customerID kernel.UUID, rating int, feedback string) (RateDeliveryCommand, error) {
	cmd := RateDeliveryCommand{
		rating:   rating,
		feedback: feedback,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(orderID.Validate(), customerID.Validate()); err != nil {
		return RateDeliveryCommand{}, err
	}
	cmd.orderID = orderID
	cmd.customerID = customerID

	return cmd, nil
}

func (c RateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrRateDeliveryCommandIsNotConstructed)
}

func (c RateDeliveryCommand) OrderID() kernel.UUID { return c.orderID }
func (c RateDeliveryCommand) CustomerID() kernel.UUID { return c.customerID }
func (c RateDeliveryCommand) Rating() int { return c.rating }
func (c RateDeliveryCommand) Feedback() string { return c.feedback }
