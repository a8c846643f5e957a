package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// SnapshotHandler receives snapshots published for one order.
type SnapshotHandler func(order.Snapshot)

// SnapshotBus is the push transport behind the state broadcaster.
// Delivery is at-most-once and advisory; subscribers must tolerate missed
// and duplicated snapshots.
type SnapshotBus interface {
	Publish(ctx context.Context, snapshot order.Snapshot) error

	// Subscribe calls handler for every snapshot of orderID until the returned
	// cancel function is called or ctx is done. Handlers of one subscription
	// are called sequentially.
	Subscribe(ctx context.Context, orderID kernel.UUID, handler SnapshotHandler) (cancel func(), err error)
}
