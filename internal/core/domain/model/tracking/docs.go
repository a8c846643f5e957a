// Package tracking holds the ephemeral values of live delivery tracking:
// location reports, the sources that produce them, the ETA estimate and the
// staleness signal used to spot unresponsive partners.
package tracking
