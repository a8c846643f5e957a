package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListOffersQueryIsNotConstructed = errors.New(
		"ListOffersQuery must be created via NewListOffersQuery constructor",
	)
)

// ListOffersQuery lists the pending orders a partner may claim.
type ListOffersQuery struct {
	partnerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewListOffersQuery(partnerID kernel.UUID) (ListOffersQuery, error) {
	if err := partnerID.Validate(); err != nil {
		return ListOffersQuery{}, err
	}
	return ListOffersQuery{partnerID: partnerID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOffersQuery) Validate() error {
	return q.guard.Validate(ErrListOffersQueryIsNotConstructed)
}

func (q ListOffersQuery) PartnerID() kernel.UUID {
	return q.partnerID
}
