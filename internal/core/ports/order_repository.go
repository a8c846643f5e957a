// Package ports defines the contracts between the dispatch core and its
// infrastructure: the order record store, the push transport, partner
// presence and the order event log.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ExpectedState is the precondition of a conditional update. Every set
// field must still match the stored record at write time for the update to
// apply. The zero value matches any record.
type ExpectedState struct {
	// Statuses matches when the stored status is one of them.
	Statuses []order.Status
	// PartnerID matches when the stored partner equals it.
	PartnerID *kernel.UUID
	// Unclaimed matches when the stored partner is null.
	Unclaimed bool
	// Unrated matches when the stored rating is null.
	Unrated bool
}

// OrderFilter narrows ListOrders. Empty fields do not filter.
type OrderFilter struct {
	Statuses   []order.Status
	PartnerID  *kernel.UUID
	CustomerID *kernel.UUID
	// Limit caps the result size; zero means no limit.
	Limit int
}

// OrderRepository is the record-store adapter for order aggregates.
type OrderRepository interface {
	// Add inserts a new order. The order must not exist yet.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// List returns the orders matching filter, oldest first.
	List(ctx context.Context, filter OrderFilter) ([]*order.Order, error)

	// ConditionalUpdate writes only the fields in aggregate.Changes() and
	// only if the stored record still satisfies expected. It reports the
	// number of affected rows; zero means the precondition no longer held.
	// It is an atomic compare-and-swap in the store, not a read followed by
	// a write.
	ConditionalUpdate(ctx context.Context, aggregate *order.Order, expected ExpectedState) (int64, error)
}
