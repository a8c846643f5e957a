package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListStaleOrdersQueryIsNotConstructed = errors.New(
		"ListStaleOrdersQuery must be created via NewListStaleOrdersQuery constructor",
	)
)

// ListStaleOrdersQuery finds orders stuck with an unresponsive partner:
// accepted or picked_up with no location report newer than threshold, or
// none at all for longer than threshold since acceptance.
//
// Example:
//
//	query, _ := NewListStaleOrdersQuery(2 * time.Minute)
//	stuck, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//
//	for _, o := range stuck {
//	    log.Printf("order %s silent for %s", o.ID, o.Age)
//	}
type ListStaleOrdersQuery struct {
	threshold time.Duration

	guard guard.ConstructorGuard
}

func NewListStaleOrdersQuery(threshold time.Duration) (ListStaleOrdersQuery, error) {
	if threshold <= 0 {
		return ListStaleOrdersQuery{}, errs.NewValueIsInvalidError("threshold")
	}
	return ListStaleOrdersQuery{threshold: threshold, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListStaleOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListStaleOrdersQueryIsNotConstructed)
}

func (q ListStaleOrdersQuery) Threshold() time.Duration {
	return q.threshold
}

// ListStaleOrdersQueryResponse is one stuck order.
type ListStaleOrdersQueryResponse struct {
	ID                 kernel.UUID
	PartnerID          kernel.UUID
	Status             string
	AcceptedAt         time.Time
	LastLocationUpdate *time.Time
	// Age is measured from the last report, or from acceptance without one.
	Age time.Duration
}
