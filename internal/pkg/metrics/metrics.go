package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClaimsTotal counts claim attempts by outcome: won, lost, rejected.
	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_claims_total",
		Help: "Claim attempts by outcome",
	}, []string{"outcome"})

	// TransitionsTotal counts applied status transitions by target status.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_transitions_total",
		Help: "Applied order status transitions by target status",
	}, []string{"status"})

	// LocationReportsTotal counts location reports by result: accepted, rejected.
	LocationReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_location_reports_total",
		Help: "Partner location reports by result",
	}, []string{"result"})

	// StaleOrders is the number of active orders whose last location report is older than the threshold.
	StaleOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_stale_orders",
		Help: "Active orders with a stale partner location",
	})

	// Subscribers is the number of open observer subscriptions.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_subscribers",
		Help: "Open order observer subscriptions",
	})

	// ReportingSessions is the number of running location reporting sessions.
	ReportingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_reporting_sessions",
		Help: "Running partner location reporting sessions",
	})
)
