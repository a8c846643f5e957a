package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	pending ──claim──> accepted ──> picked_up ──> delivered
//	   │                  │
//	   └──> cancelled <───┘
//
// delivered and cancelled are terminal. accepted is only reachable
// through a claim, never through a plain transition.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending orders are offered to online partners.
	Pending

	// Accepted orders have exactly one partner, set by a successful claim.
	Accepted

	// PickedUp means the partner collected the order at the pickup point.
	PickedUp

	// Delivered is terminal.
	Delivered

	// Cancelled is terminal.
	Cancelled
)

var statusStrings = map[Status]string{
	Unknown:   "unknown",
	Pending:   "pending",
	Accepted:  "accepted",
	PickedUp:  "picked_up",
	Delivered: "delivered",
	Cancelled: "cancelled",
}

// successors lists the direct edges of the state machine.
var successors = map[Status][]Status{
	Pending:  {Accepted, Cancelled},
	Accepted: {PickedUp, Cancelled},
	PickedUp: {Delivered},
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Accepted, PickedUp, Delivered, Cancelled}
}

// ParseStatus maps the persisted/wire name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range statusStrings {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusStrings[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := statusStrings[s]; ok {
		return str
	}
	return statusStrings[Unknown]
}

// MarshalText and UnmarshalText make Status a snake_case string on the wire.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// rank orders statuses by progress. Both terminal statuses rank last.
func (s Status) rank() int {
	switch s {
	case Pending:
		return 1
	case Accepted:
		return 2
	case PickedUp:
		return 3
	case Delivered, Cancelled:
		return 4
	}
	return 0
}

// IsActive reports whether a partner is on the way with the order, the
// only states in which location reports are accepted.
func (s Status) IsActive() bool {
	return s == Accepted || s == PickedUp
}

// CanTransitionTo reports whether target is a direct successor of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range successors[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateCanHavePartner checks status and partner assignment agree.
// Pending orders never have a partner; accepted, picked_up and delivered
// always do. A cancelled order keeps whatever it had at cancellation.
func (s Status) ValidateCanHavePartner(hasPartner bool) error {
	switch {
	case s == Pending && hasPartner:
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to have a partner", s))
	case !hasPartner && (s == Accepted || s == PickedUp || s == Delivered):
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to have no partner", s))
	}
	return nil
}
