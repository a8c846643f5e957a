package tracking

import (
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Phase tags a simulated route step with what the partner is doing.
type Phase string

const (
	HeadingToPickup   Phase = "heading_to_pickup"
	AtPickup          Phase = "at_pickup"
	HeadingToCustomer Phase = "heading_to_customer"
	AtCustomer        Phase = "at_customer"
)

func (p Phase) IsValid() bool {
	switch p {
	case HeadingToPickup, AtPickup, HeadingToCustomer, AtCustomer:
		return true
	}
	return false
}

// RouteStep is one waypoint of the simulated route.
type RouteStep struct {
	Name  string
	Phase Phase
	Point kernel.Point
}

// RoutePlayer plays a fixed route back one step per call to Next. Orders
// already picked up resume from the first heading_to_customer step, so a
// restarted session does not walk back to the pickup. After the last step
// the player keeps reporting the arrival point.
type RoutePlayer struct {
	mu     sync.Mutex
	route  []RouteStep
	cursor int
}

func NewRoutePlayer(route []RouteStep, status order.Status) *RoutePlayer {
	return &RoutePlayer{
		route:  append([]RouteStep(nil), route...),
		cursor: StartOffset(route, status),
	}
}

// StartOffset returns the index a session starts from for the given status.
func StartOffset(route []RouteStep, status order.Status) int {
	if status != order.PickedUp {
		return 0
	}
	for i, step := range route {
		if step.Phase == HeadingToCustomer {
			return i
		}
	}
	return 0
}

func (p *RoutePlayer) Next(now time.Time) (LocationReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.route) == 0 {
		return LocationReport{}, false
	}

	step := p.route[p.cursor]
	if p.cursor < len(p.route)-1 {
		p.cursor++
	}
	return LocationReport{Position: step.Point, ObservedAt: now}, true
}

// Current returns the step the next call to Next will report.
func (p *RoutePlayer) Current() (RouteStep, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.route) == 0 {
		return RouteStep{}, false
	}
	return p.route[p.cursor], true
}

// Densify splits every leg of route into steps moves, inserting the
// intermediate points on the straight line between consecutive steps.
// Inserted points carry the name of the step they lead to and the heading
// phase towards it. steps <= 1 returns a copy of route.
func Densify(route []RouteStep, steps int) ([]RouteStep, error) {
	if steps <= 1 || len(route) < 2 {
		return append([]RouteStep(nil), route...), nil
	}

	out := make([]RouteStep, 0, (len(route)-1)*steps+1)
	out = append(out, route[0])
	for i := 1; i < len(route); i++ {
		from, to := route[i-1], route[i]
		for k := 1; k < steps; k++ {
			p, err := from.Point.Towards(to.Point, float64(k)/float64(steps))
			if err != nil {
				return nil, err
			}
			out = append(out, RouteStep{Name: to.Name, Phase: headingTo(to.Phase), Point: p})
		}
		out = append(out, to)
	}
	return out, nil
}

func headingTo(p Phase) Phase {
	switch p {
	case AtPickup:
		return HeadingToPickup
	case AtCustomer:
		return HeadingToCustomer
	}
	return p
}
