package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrPickupCodeIsRequired = errors.New("pickup code is required")
	ErrZoneCodeIsRequired   = errors.New("zone code is required")
)

// CreateOrderCommand places a new pending order for a customer.
// The delivery fee and total are taken from the zone, never from the caller.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, customerID, "STUDENT_CAFE", "NEW_ASIA", "Room 301", kernel.MustMoney("38.00"))
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	customerID kernel.UUID
	pickupCode string
	zoneCode   string
	details    string
	subtotal   kernel.Money

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID, customerID kernel.UUID,
	pickupCode, zoneCode, details string,
	subtotal kernel.Money,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		details:  details,
		subtotal: subtotal,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setPickupCode(pickupCode),
		cmd.setZoneCode(zoneCode),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c CreateOrderCommand) CustomerID() kernel.UUID { return c.customerID }
func (c CreateOrderCommand) PickupCode() string { return c.pickupCode }
func (c CreateOrderCommand) ZoneCode() string { return c.zoneCode }
func (c CreateOrderCommand) Details() string { return c.details }
func (c CreateOrderCommand) Subtotal() kernel.Money { return c.subtotal }

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setPickupCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrPickupCodeIsRequired
	}
	c.pickupCode = code
	return nil
}

func (c *CreateOrderCommand) setZoneCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrZoneCodeIsRequired
	}
	c.zoneCode = code
	return nil
}
