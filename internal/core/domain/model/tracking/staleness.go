package tracking

import (
	"time"

	"dispatch/internal/core/domain/model/order"
)

// Staleness describes how old the partner position of an order is.
// Age is measured from the last report, or from acceptance when no report
// arrived yet. Stale is only ever true for accepted or picked_up orders.
type Staleness struct {
	Age       time.Duration
	HasReport bool
	Stale     bool
}

func AssessStaleness(o *order.Order, now time.Time, threshold time.Duration) Staleness {
	age, hasReport := o.Staleness(now)
	if !hasReport {
		if accepted := o.AcceptedAt(); accepted != nil {
			age = max(now.Sub(*accepted), 0)
		}
	}

	return Staleness{
		Age:       age,
		HasReport: hasReport,
		Stale:     o.Status().IsActive() && threshold > 0 && age > threshold,
	}
}
