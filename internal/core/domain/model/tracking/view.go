package tracking

import "dispatch/internal/core/domain/model/order"

// View is what an observer of an order sees: the full snapshot plus the
// derived estimate and staleness at the time it was built. ETA is nil for
// terminal orders.
type View struct {
	Order     order.Snapshot
	ETA       *Estimate
	Staleness Staleness
}
