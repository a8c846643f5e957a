// Package commands contains the business operations that modify orders.
// Every command follows the same pattern: validation, a unit of work around
// read and conditional write, then notification of observers once committed.
package commands

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order operations.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   repo := uow.OrderRepository()
	//   // ... read, decide, conditional update
	//
	//   err = uow.Commit(ctx)
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// ZoneCatalog resolves the reference data an order is priced from.
type ZoneCatalog interface {
	Zone(code string) (zone.Zone, error)
	Pickup(code string) (zone.PickupPoint, error)
}

// SessionStopper stops the location reporting sessions of a partner.
type SessionStopper interface {
	StopPartner(partnerID kernel.UUID)
}
