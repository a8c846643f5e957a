package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/pkg/errs"
)

const (
	MinRating = 1
	MaxRating = 5

	maxDetailsLength  = 500
	maxFeedbackLength = 1000
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")

	// ErrAlreadyRated is returned when a customer rates the same delivery twice.
	ErrAlreadyRated = errs.NewValueIsInvalidErrorWithCause("rating", errors.New("delivery is already rated"))
)

// Order is the aggregate root of one delivery request.
//
// Invariants:
//   - id, customerID, route and prices never change after creation
//   - total == subtotal + deliveryFee
//   - partnerID is set exactly once, by Claim
//   - each milestone is set at most once and is not earlier than the previous one
//
// Every mutation is recorded in a change set so that the store writes only
// the columns touched by this operation.
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID
	partnerID  *kernel.UUID

	pickupCode     string
	pickupPoint    kernel.Point
	dropoffZone    string
	dropoffPoint   kernel.Point
	dropoffDetails string

	subtotal    kernel.Money
	deliveryFee kernel.Money
	total       kernel.Money

	status      Status
	createdAt   time.Time
	acceptedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time

	partnerLocation    *kernel.Point
	lastLocationUpdate *time.Time

	rating   *int
	feedback string

	changes       Changes
	isConstructed bool
}

// NewOrder creates a pending order priced from the drop-off zone.
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, cafe, newAsia, "Room 301", kernel.MustMoney("38.00"), time.Now())
//	// o.Total() == 43.00 when the zone fee is 5.00
func NewOrder(
	id, customerID kernel.UUID,
	pickup zone.PickupPoint,
	dropoff zone.Zone,
	details string,
	subtotal kernel.Money,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		createdAt:     normalize(now),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setPickup(pickup.Code(), pickup.Point()),
		o.setDropoff(dropoff.Code(), dropoff.Point(), details),
	); err != nil {
		return nil, err
	}

	o.subtotal = subtotal
	o.deliveryFee = dropoff.DeliveryFee()
	o.total = subtotal.Add(dropoff.DeliveryFee())

	return o, nil
}

// RestoreOrder rebuilds an order from persisted state and validates the
// cross-field invariants, so a corrupt record fails at the store boundary.
// The restored order has an empty change set.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{isConstructed: true}

	errList := []error{
		o.setID(s.ID),
		o.setCustomerID(s.CustomerID),
		o.setPickup(s.PickupCode, s.PickupPoint),
		o.setDropoff(s.DropoffZone, s.DropoffPoint, s.DropoffDetails),
		s.Status.Validate(),
		s.Status.ValidateCanHavePartner(s.PartnerID != nil),
	}
	if s.PartnerID != nil {
		errList = append(errList, s.PartnerID.Validate())
	}
	if !s.Total.IsEqual(s.Subtotal.Add(s.DeliveryFee)) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s != %s + %s", s.Total, s.Subtotal, s.DeliveryFee)))
	}
	if s.PartnerLocation != nil {
		errList = append(errList, s.PartnerLocation.Validate())
	}
	if s.Rating != nil {
		errList = append(errList, validateRating(*s.Rating))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	o.partnerID = copyPtr(s.PartnerID)
	o.subtotal = s.Subtotal
	o.deliveryFee = s.DeliveryFee
	o.total = s.Total
	o.status = s.Status
	o.createdAt = s.CreatedAt
	o.acceptedAt = copyPtr(s.AcceptedAt)
	o.pickedUpAt = copyPtr(s.PickedUpAt)
	o.deliveredAt = copyPtr(s.DeliveredAt)
	o.cancelledAt = copyPtr(s.CancelledAt)
	o.partnerLocation = copyPtr(s.PartnerLocation)
	o.lastLocationUpdate = copyPtr(s.LastLocationUpdate)
	o.rating = copyPtr(s.Rating)
	o.feedback = s.Feedback

	return o, nil
}

// Validate ensures the Order was built by one of the constructors.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) PartnerID() *kernel.UUID { return copyPtr(o.partnerID) }
func (o *Order) PickupCode() string { return o.pickupCode }
func (o *Order) PickupPoint() kernel.Point { return o.pickupPoint }
func (o *Order) DropoffZone() string { return o.dropoffZone }
func (o *Order) DropoffPoint() kernel.Point { return o.dropoffPoint }
func (o *Order) DropoffDetails() string { return o.dropoffDetails }
func (o *Order) Subtotal() kernel.Money { return o.subtotal }
func (o *Order) DeliveryFee() kernel.Money { return o.deliveryFee }
func (o *Order) Total() kernel.Money { return o.total }
func (o *Order) Status() Status { return o.status }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) AcceptedAt() *time.Time { return copyPtr(o.acceptedAt) }
func (o *Order) PickedUpAt() *time.Time { return copyPtr(o.pickedUpAt) }
func (o *Order) DeliveredAt() *time.Time { return copyPtr(o.deliveredAt) }
func (o *Order) CancelledAt() *time.Time { return copyPtr(o.cancelledAt) }
func (o *Order) PartnerLocation() *kernel.Point { return copyPtr(o.partnerLocation) }
func (o *Order) LastLocationUpdate() *time.Time { return copyPtr(o.lastLocationUpdate) }
func (o *Order) Rating() *int { return copyPtr(o.rating) }
func (o *Order) Feedback() string { return o.feedback }

// IsParty reports whether actor is the customer or the assigned partner.
func (o *Order) IsParty(actor kernel.UUID) bool {
	return o.customerID.IsEqual(actor) || o.isPartner(actor)
}

// Claim assigns partnerID and moves the order to accepted.
// It fails with AlreadyClaimedError when a partner is already set or the
// order is no longer pending, including when the caller itself won earlier.
func (o *Order) Claim(partnerID kernel.UUID, now time.Time) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}
	if o.partnerID != nil || o.status != Pending {
		return errs.NewAlreadyClaimedError(o.id)
	}

	o.partnerID = &partnerID
	o.changes.PartnerID = &partnerID
	o.setStatus(Accepted, now)
	return nil
}

// Transition applies a partner- or customer-driven status change.
//
// Applying the current status again is a no-op success for any party of the
// order, which absorbs duplicate retries. accepted is only reachable via Claim.
func (o *Order) Transition(target Status, actor kernel.UUID, now time.Time) error {
	if err := errors.Join(target.Validate(), actor.Validate()); err != nil {
		return err
	}

	if o.status == target {
		if !o.IsParty(actor) {
			return errs.NewNotAuthorizedError(actor, o.id, "transition to "+target.String())
		}
		return nil
	}

	if target == Accepted {
		return errs.NewInvalidTransitionErrorWithCause(o.status, target, errors.New("orders are accepted by claiming"))
	}
	if !o.status.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(o.status, target)
	}
	if !o.mayDrive(target, actor) {
		return errs.NewNotAuthorizedError(actor, o.id, "transition to "+target.String())
	}

	o.setStatus(target, now)
	return nil
}

// ReportLocation stores the newest partner position. Reports are applied
// in arrival order; observedAt is not compared with the stored update time.
func (o *Order) ReportLocation(partnerID kernel.UUID, position kernel.Point, now time.Time) error {
	if err := errors.Join(partnerID.Validate(), position.Validate()); err != nil {
		return err
	}
	if !o.isPartner(partnerID) {
		return errs.NewNotOwnerError(partnerID, o.id)
	}
	if !o.status.IsActive() {
		return errs.NewInvalidStateError(o.id, o.status)
	}

	at := normalize(now)
	o.partnerLocation = &position
	o.lastLocationUpdate = &at
	o.changes.PartnerLocation = &position
	o.changes.LastLocationUpdate = &at
	return nil
}

// RateDelivery records the customer's rating of a delivered order, once.
func (o *Order) RateDelivery(customerID kernel.UUID, rating int, feedback string) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	if !o.customerID.IsEqual(customerID) {
		return errs.NewNotAuthorizedError(customerID, o.id, "rate delivery")
	}
	if o.status != Delivered {
		return errs.NewInvalidStateError(o.id, o.status)
	}
	if o.rating != nil {
		return ErrAlreadyRated
	}

	feedback = strings.TrimSpace(feedback)
	if err := errors.Join(validateRating(rating), validateLength("feedback", feedback, maxFeedbackLength)); err != nil {
		return err
	}

	o.rating = &rating
	o.feedback = feedback
	o.changes.Rating = &rating
	o.changes.Feedback = &feedback
	return nil
}

// Staleness is the age of the last location report at now. The second
// result is false while the order has never received a report.
func (o *Order) Staleness(now time.Time) (time.Duration, bool) {
	if o.lastLocationUpdate == nil {
		return 0, false
	}
	age := now.Sub(*o.lastLocationUpdate)
	if age < 0 {
		age = 0
	}
	return age, true
}

// Changes returns the fields mutated since the order was created or restored.
func (o *Order) Changes() Changes {
	return o.changes
}

// ClearChanges resets the change set after a successful write.
func (o *Order) ClearChanges() {
	o.changes = Changes{}
}

func (o *Order) isPartner(id kernel.UUID) bool {
	return o.partnerID != nil && o.partnerID.IsEqual(id)
}

// mayDrive encodes who may take each edge: the customer cancels a pending
// order, either party cancels an accepted one, and only the partner moves
// the delivery forward.
func (o *Order) mayDrive(target Status, actor kernel.UUID) bool {
	switch {
	case o.status == Pending && target == Cancelled:
		return o.customerID.IsEqual(actor)
	case o.status == Accepted && target == Cancelled:
		return o.IsParty(actor)
	default:
		return o.isPartner(actor)
	}
}

func (o *Order) setStatus(target Status, now time.Time) {
	at := normalize(now)
	if prev := o.latestMilestone(); at.Before(prev) {
		at = prev
	}

	o.status = target
	o.changes.Status = &target

	switch target {
	case Accepted:
		o.acceptedAt = &at
		o.changes.AcceptedAt = &at
	case PickedUp:
		o.pickedUpAt = &at
		o.changes.PickedUpAt = &at
	case Delivered:
		o.deliveredAt = &at
		o.changes.DeliveredAt = &at
	case Cancelled:
		o.cancelledAt = &at
		o.changes.CancelledAt = &at
	case Pending, Unknown:
	}
}

func (o *Order) latestMilestone() time.Time {
	latest := o.createdAt
	for _, m := range []*time.Time{o.acceptedAt, o.pickedUpAt, o.deliveredAt} {
		if m != nil && m.After(latest) {
			latest = *m
		}
	}
	return latest
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setPickup(code string, point kernel.Point) error {
	if strings.TrimSpace(code) == "" {
		return errs.NewValueIsRequiredError("pickupPoint")
	}
	if err := point.Validate(); err != nil {
		return err
	}
	o.pickupCode = code
	o.pickupPoint = point
	return nil
}

func (o *Order) setDropoff(code string, point kernel.Point, details string) error {
	if strings.TrimSpace(code) == "" {
		return errs.NewValueIsRequiredError("dropoffZone")
	}
	details = strings.TrimSpace(details)
	if err := errors.Join(point.Validate(), validateLength("dropoffDetails", details, maxDetailsLength)); err != nil {
		return err
	}
	o.dropoffZone = code
	o.dropoffPoint = point
	o.dropoffDetails = details
	return nil
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return errs.NewValueIsOutOfRangeError("rating", rating, MinRating, MaxRating)
	}
	return nil
}

func validateLength(param, value string, limit int) error {
	if n := len([]rune(value)); n > limit {
		return errs.NewValueIsOutOfRangeError(param+" length", n, 0, limit)
	}
	return nil
}

// normalize drops the monotonic clock and sub-microsecond precision so that
// timestamps compare equal after a round trip through the store.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
