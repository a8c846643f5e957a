package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultPollInterval is used when the hub is built with a non-positive interval.
const DefaultPollInterval = 10 * time.Second

var (
	ErrHubClosed     = errors.New("broadcast hub is closed")
	ErrObserverIsNil = errors.New("observer is required")
)

// Update is the value delivered to observers.
type Update = tracking.View

// Observer receives updates of one order. Calls for one subscription are
// sequential.
type Observer func(Update)

// Loader reads the current state of an order for the poll path.
type Loader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// Viewer derives the update delivered for an order.
type Viewer interface {
	View(o *order.Order, now time.Time) (tracking.View, error)
}

// Hub fans order snapshots out to subscribers. It holds one bus
// subscription per order id no matter how many observers it serves.
type Hub struct {
	bus          ports.SnapshotBus
	loader       Loader
	viewer       Viewer
	pollInterval time.Duration
	log          *zap.Logger

	mu     sync.Mutex
	closed bool
	topics map[kernel.UUID]*topic
}

type topic struct {
	cancel func()
	subs   []*Subscription
}

func NewHub(bus ports.SnapshotBus, loader Loader, viewer Viewer, pollInterval time.Duration, log *zap.Logger) *Hub {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Hub{
		bus:          bus,
		loader:       loader,
		viewer:       viewer,
		pollInterval: pollInterval,
		log:          logger.Component(log, "broadcast"),
		topics:       make(map[kernel.UUID]*topic),
	}
}

// Notify pushes a committed snapshot to every process subscribed to the
// order. It does not wait for observers.
func (h *Hub) Notify(ctx context.Context, snapshot order.Snapshot) error {
	return h.bus.Publish(ctx, snapshot)
}

// Subscribe registers observer for orderID. The observer first receives
// the current state, then every change seen by push or poll, until ctx is
// done or the subscription is closed.
func (h *Hub) Subscribe(ctx context.Context, orderID kernel.UUID, observer Observer) (*Subscription, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		return nil, ErrObserverIsNil
	}

	sub := newSubscription(h, orderID, observer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	t, ok := h.topics[orderID]
	if !ok {
		cancel, err := h.bus.Subscribe(context.Background(), orderID, h.dispatcher(orderID))
		if err != nil {
			h.mu.Unlock()
			return nil, err
		}
		t = &topic{cancel: cancel}
		h.topics[orderID] = t
	}
	t.subs = append(t.subs, sub)
	h.mu.Unlock()

	metrics.Subscribers.Inc()
	if err := sub.start(ctx); err != nil {
		sub.Close()
		return nil, err
	}
	return sub, nil
}

// Close ends every subscription and releases the bus.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscription
	for _, t := range h.topics {
		all = append(all, t.subs...)
	}
	h.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// dispatcher delivers a pushed snapshot to the observers of one order in
// registration order.
func (h *Hub) dispatcher(orderID kernel.UUID) ports.SnapshotHandler {
	return func(snapshot order.Snapshot) {
		if !snapshot.ID.IsEqual(orderID) {
			return
		}

		h.mu.Lock()
		var subs []*Subscription
		if t, ok := h.topics[orderID]; ok {
			subs = append(subs, t.subs...)
		}
		h.mu.Unlock()

		for _, s := range subs {
			s.deliver(snapshot)
		}
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	t, ok := h.topics[s.orderID]
	if !ok {
		h.mu.Unlock()
		return
	}
	for i, candidate := range t.subs {
		if candidate == s {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			break
		}
	}
	var cancel func()
	if len(t.subs) == 0 {
		delete(h.topics, s.orderID)
		cancel = t.cancel
	}
	h.mu.Unlock()

	// The bus waits for an in-flight dispatch, which takes h.mu.
	if cancel != nil {
		cancel()
	}
}

func (h *Hub) view(snapshot order.Snapshot) (Update, error) {
	o, err := order.RestoreOrder(snapshot)
	if err != nil {
		return Update{}, err
	}
	return h.viewer.View(o, time.Now())
}
