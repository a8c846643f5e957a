package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrAlreadyClaimed    = errors.New("order already claimed")
	ErrNotOwner          = errors.New("not the order owner")
	ErrInvalidState      = errors.New("invalid order state")
	ErrPartnerOffline    = errors.New("partner is offline")
)

// InvalidTransitionError is returned when the target status is not a direct
// successor of the current status.
type InvalidTransitionError struct {
	From  string
	To    string
	Cause error
}

func NewInvalidTransitionError(from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String()}
}

func NewInvalidTransitionErrorWithCause(from, to fmt.Stringer, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String(), Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s -> %s (cause: %v)", ErrInvalidTransition, e.From, e.To, e.Cause)
	}
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NotAuthorizedError is returned when the actor has no rights over the order.
type NotAuthorizedError struct {
	Actor   string
	OrderID string
	Action  string
}

func NewNotAuthorizedError(actor, orderID fmt.Stringer, action string) *NotAuthorizedError {
	return &NotAuthorizedError{Actor: actor.String(), OrderID: orderID.String(), Action: action}
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: actor %s may not %s order %s", ErrNotAuthorized, e.Actor, e.Action, e.OrderID)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// AlreadyClaimedError is the expected outcome of a lost claim race.
type AlreadyClaimedError struct {
	OrderID string
}

func NewAlreadyClaimedError(orderID fmt.Stringer) *AlreadyClaimedError {
	return &AlreadyClaimedError{OrderID: orderID.String()}
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyClaimed, e.OrderID)
}

func (e *AlreadyClaimedError) Unwrap() error {
	return ErrAlreadyClaimed
}

// NotOwnerError is returned when a location report comes from a partner
// other than the one assigned to the order.
type NotOwnerError struct {
	PartnerID string
	OrderID   string
}

func NewNotOwnerError(partnerID, orderID fmt.Stringer) *NotOwnerError {
	return &NotOwnerError{PartnerID: partnerID.String(), OrderID: orderID.String()}
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("%s: partner %s does not own order %s", ErrNotOwner, e.PartnerID, e.OrderID)
}

func (e *NotOwnerError) Unwrap() error {
	return ErrNotOwner
}

// InvalidStateError is returned when an operation needs the order in a
// status it is not in (e.g. a location report for a delivered order).
type InvalidStateError struct {
	OrderID string
	Status  string
}

func NewInvalidStateError(orderID, status fmt.Stringer) *InvalidStateError {
	return &InvalidStateError{OrderID: orderID.String(), Status: status.String()}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: order %s is %s", ErrInvalidState, e.OrderID, e.Status)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// PartnerOfflineError is returned when an offline partner asks for offers or claims.
type PartnerOfflineError struct {
	PartnerID string
}

func NewPartnerOfflineError(partnerID fmt.Stringer) *PartnerOfflineError {
	return &PartnerOfflineError{PartnerID: partnerID.String()}
}

func (e *PartnerOfflineError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPartnerOffline, e.PartnerID)
}

func (e *PartnerOfflineError) Unwrap() error {
	return ErrPartnerOffline
}
