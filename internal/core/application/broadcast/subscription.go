package broadcast

import (
	"context"
	"fmt"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Subscription is one observer of one order.
type Subscription struct {
	hub      *Hub
	orderID  kernel.UUID
	observer Observer
	log      *zap.Logger

	// mu serializes deliveries and guards last and closed.
	mu     sync.Mutex
	last   *order.Snapshot
	closed bool

	poller    *cron.Cron
	pollCtx   context.Context
	stopPoll  context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	inflight  sync.WaitGroup
}

func newSubscription(h *Hub, orderID kernel.UUID, observer Observer) *Subscription {
	pollCtx, stopPoll := context.WithCancel(context.Background())
	return &Subscription{
		hub:      h,
		orderID:  orderID,
		observer: observer,
		log:      h.log.With(zap.String("order_id", orderID.String())),
		poller:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		pollCtx:  pollCtx,
		stopPoll: stopPoll,
		done:     make(chan struct{}),
	}
}

func (s *Subscription) start(ctx context.Context) error {
	schedule := fmt.Sprintf("@every %s", s.hub.pollInterval)
	if _, err := s.poller.AddFunc(schedule, s.poll); err != nil {
		return err
	}
	s.poller.Start()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.poll()
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return nil
}

// OrderID is the observed order.
func (s *Subscription) OrderID() kernel.UUID {
	return s.orderID
}

// Done is closed once the subscription has been closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close stops push and poll delivery. No update is delivered after Close
// returns. It must not be called from the observer; cancel the
// subscription context there instead.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.stopPoll()
		<-s.poller.Stop().Done()
		s.hub.remove(s)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.inflight.Wait()
		metrics.Subscribers.Dec()
	})
}

func (s *Subscription) poll() {
	o, err := s.hub.loader.Get(s.pollCtx, s.orderID)
	if err != nil {
		if s.pollCtx.Err() == nil {
			s.log.Debug("order poll failed", zap.Error(err))
		}
		return
	}
	s.deliver(o.Snapshot())
}

// deliver hands snapshot to the observer unless it equals the last one or
// is older than it. A poll read before a push may finish after it.
func (s *Subscription) deliver(snapshot order.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.last != nil && (s.last.Equal(snapshot) || snapshot.Precedes(*s.last)) {
		return
	}

	update, err := s.hub.view(snapshot)
	if err != nil {
		s.log.Warn("dropping undecodable snapshot", zap.Error(err))
		return
	}

	s.last = &snapshot
	s.observer(update)
}
