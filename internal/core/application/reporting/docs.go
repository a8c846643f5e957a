// Package reporting runs location reporting sessions.
//
// A session belongs to one (order, partner) pair. On every tick it asks its
// tracking.LocationSource for the next fix and submits it through the same
// ReportLocation command a real device uses. The simulated route and the
// device feed are both plain sources, each owned by exactly one session, so
// no step cursor is shared between sessions.
//
// # Usage
//
//	manager := reporting.NewManager(orders, reportHandler, route, 2*time.Second, logger)
//
//	// simulated route, resuming after pickup when the order is picked_up
//	if _, err := manager.StartSimulation(ctx, orderID, partnerID); err != nil { ... }
//
//	// real device
//	feed := tracking.NewDeviceFeed()
//	if _, err := manager.Start(ctx, orderID, partnerID, feed); err != nil { ... }
//	feed.Push(report)
//
//	defer manager.StopAll()
//
// A session stops itself when the order is no longer owned by the partner or
// leaves the accepted and picked_up states.
package reporting
