// Package broadcast keeps every observer of an order looking at the latest
// server state.
//
// A Hub owns both transports behind one subscription: a push channel
// (ports.SnapshotBus) and a per-subscription poll that refetches the order
// on a fixed interval. Push delivery is advisory and may be lost or
// duplicated; the poll bounds how long an observer can lag. Whatever the
// source, the observer receives full snapshots only, and never the same
// snapshot twice in a row.
//
//	sub, err := hub.Subscribe(ctx, orderID, func(u broadcast.Update) {
//	    render(u.Order, u.ETA)
//	})
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
package broadcast
