package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
)

// MaxListLimit caps the page size of order listings.
const MaxListLimit = 200

// OrderRole selects which side of the order the actor is listing from.
type OrderRole string

const (
	AsCustomer OrderRole = "customer"
	AsPartner  OrderRole = "partner"
)

// ListOrdersQuery lists the orders an actor is a party to, either as the
// customer (order history) or as the partner (deliveries), optionally
// narrowed to some statuses.
type ListOrdersQuery struct {
	actor    kernel.UUID
	role     OrderRole
	statuses []order.Status
	limit    int

	guard guard.ConstructorGuard
}

func NewListOrdersQuery(actor kernel.UUID, role OrderRole, statuses []order.Status, limit int) (ListOrdersQuery, error) {
	var errList []error
	errList = append(errList, actor.Validate())
	if role != AsCustomer && role != AsPartner {
		errList = append(errList, errs.NewValueIsInvalidError("role"))
	}
	for _, s := range statuses {
		errList = append(errList, s.Validate())
	}
	if limit < 0 || limit > MaxListLimit {
		errList = append(errList, errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxListLimit))
	}
	if err := errors.Join(errList...); err != nil {
		return ListOrdersQuery{}, err
	}

	return ListOrdersQuery{
		actor:    actor,
		role:     role,
		statuses: append([]order.Status(nil), statuses...),
		limit:    limit,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Actor() kernel.UUID { return q.actor }
func (q ListOrdersQuery) Role() OrderRole { return q.role }
func (q ListOrdersQuery) Statuses() []order.Status { return append([]order.Status(nil), q.statuses...) }
func (q ListOrdersQuery) Limit() int { return q.limit }
