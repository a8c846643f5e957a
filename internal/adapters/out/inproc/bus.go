// Package inproc holds single-process implementations of the push
// transport and partner presence, used when no Redis is configured and in
// tests.
package inproc

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 16

// SnapshotBus delivers snapshots to subscribers of the same process. Each
// subscription has a bounded queue drained by its own goroutine; when the
// queue is full the snapshot is dropped for that subscriber.
type SnapshotBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[kernel.UUID]map[uint64]*subscription
	buffer int
}

var _ ports.SnapshotBus = (*SnapshotBus)(nil)

type subscription struct {
	queue chan order.Snapshot
	done  chan struct{}
	once  sync.Once
}

func NewSnapshotBus(buffer int) *SnapshotBus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &SnapshotBus{
		subs:   make(map[kernel.UUID]map[uint64]*subscription),
		buffer: buffer,
	}
}

func (b *SnapshotBus) Publish(_ context.Context, snapshot order.Snapshot) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs[snapshot.ID] {
		select {
		case s.queue <- snapshot:
		default:
		}
	}
	return nil
}

func (b *SnapshotBus) Subscribe(
	ctx context.Context,
	orderID kernel.UUID,
	handler ports.SnapshotHandler,
) (func(), error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	s := &subscription{
		queue: make(chan order.Snapshot, b.buffer),
		done:  make(chan struct{}),
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	if b.subs[orderID] == nil {
		b.subs[orderID] = make(map[uint64]*subscription)
	}
	b.subs[orderID][id] = s
	b.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer b.remove(orderID, id)
		for {
			select {
			case <-s.done:
				return
			case <-ctx.Done():
				return
			case snap := <-s.queue:
				handler(snap)
			}
		}
	}()

	// Must not be called from within handler.
	cancel := func() {
		s.once.Do(func() { close(s.done) })
		<-stopped
	}
	return cancel, nil
}

func (b *SnapshotBus) remove(orderID kernel.UUID, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs[orderID], id)
	if len(b.subs[orderID]) == 0 {
		delete(b.subs, orderID)
	}
}
