// Package order provides the Order aggregate root and its lifecycle state
// machine for campus deliveries.
//
// The package includes:
//   - Order: identity, parties, route, prices, milestones and tracking fields
//   - Status: the legal transitions between lifecycle states
//   - Snapshot: the full-state value handed to observers and to the store
//   - Changes: the fields an operation mutated, used for conditional writes
//
// Key business rules:
//   - Orders start pending and are priced once: total = subtotal + zone fee
//   - A partner is attached exactly once, by Claim, which also accepts the order
//   - Partners drive picked_up and delivered; customers cancel pending orders;
//     either party may cancel an accepted order
//   - Re-applying the current status is an idempotent success
//   - Only the assigned partner may report locations, and only while the
//     order is accepted or picked_up
//
// The aggregate decides what is legal. Whether the decision still holds at
// write time is settled by the store's conditional update.
package order
