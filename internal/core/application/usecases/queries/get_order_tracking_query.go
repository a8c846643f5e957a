package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
		"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
	)
)

// GetOrderTrackingQuery fetches the live view of one order for one of its
// parties: the customer who placed it or the partner who claimed it.
//
// Example:
//
//	query, err := NewGetOrderTrackingQuery(orderID, actorID)
//	if err != nil {
//	    return err
//	}
//
//	view, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//
//	if view.ETA != nil {
//	    fmt.Printf("%s, about %d min away\n", view.Order.Status, view.ETA.RoundedMinutes())
//	}
type GetOrderTrackingQuery struct {
	orderID kernel.UUID
	viewer  kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderTrackingQuery creates a tracking query on behalf of viewer.
func NewGetOrderTrackingQuery(orderID, viewer kernel.UUID) (GetOrderTrackingQuery, error) {
	if err := errors.Join(orderID.Validate(), viewer.Validate()); err != nil {
		return GetOrderTrackingQuery{}, err
	}
	return GetOrderTrackingQuery{
		orderID: orderID,
		viewer:  viewer,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderTrackingQueryIsNotConstructed if validation fails.
func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetOrderTrackingQuery) Viewer() kernel.UUID {
	return q.viewer
}
