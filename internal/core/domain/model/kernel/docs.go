// Package kernel holds the value objects shared across aggregates:
// identifiers (UUID), geographic positions (Point) and amounts (Money).
//
// Every value object validates on construction and cannot be built with
// invalid data. Zero values of UUID and Point fail Validate.
package kernel
