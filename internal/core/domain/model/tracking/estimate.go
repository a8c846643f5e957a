package tracking

import (
	"math"
	"time"
)

// Estimate is the remaining distance and walking time to the drop-off.
type Estimate struct {
	DistanceMeters float64
	Duration       time.Duration
}

func (e Estimate) DurationSeconds() float64 {
	return e.Duration.Seconds()
}

// RoundedMinutes is the duration rounded up to whole minutes.
func (e Estimate) RoundedMinutes() int {
	return int(math.Ceil(e.Duration.Minutes()))
}
