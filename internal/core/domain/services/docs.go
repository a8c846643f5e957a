// Package services provides domain services that work across aggregates and
// reference data of the dispatch system.
//
// The package includes:
//   - ETAEstimator: the waypoint-based distance and walking-time estimate from
//     the partner (or the pickup point) to an order's drop-off
//
// Domain services are stateless; they read aggregates and catalogs but never
// mutate them.
package services
