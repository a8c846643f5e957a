package tracking

import (
	"sync"
	"time"
)

// DeviceFeed buffers the latest fix pushed by a real device. Next hands out
// each fix once; older unread fixes are replaced by newer ones.
type DeviceFeed struct {
	mu      sync.Mutex
	latest  LocationReport
	pending bool
}

func NewDeviceFeed() *DeviceFeed {
	return &DeviceFeed{}
}

// Push records a new fix from the device.
func (f *DeviceFeed) Push(r LocationReport) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = r
	f.pending = true
}

func (f *DeviceFeed) Next(_ time.Time) (LocationReport, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.pending {
		return LocationReport{}, false
	}
	f.pending = false
	return f.latest, true
}
