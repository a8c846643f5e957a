package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/inproc"
	"dispatch/internal/core/application/broadcast"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

// store is a loader whose current order can be swapped by the test.
type store struct {
	mu    sync.Mutex
	order *order.Order
}

func (s *store) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil || !s.order.ID().IsEqual(id) {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.RestoreOrder(s.order.Snapshot())
}

func (s *store) set(o *order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = o
}

// gatedLoader reads the order, then holds the read until released.
type gatedLoader struct {
	*store
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func (l *gatedLoader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	o, err := l.store.Get(ctx, id)
	l.once.Do(func() {
		close(l.read)
		<-l.release
	})
	return o, err
}

// countingBus wraps a bus and counts subscriptions; drop discards publishes.
type countingBus struct {
	ports.SnapshotBus
	mu         sync.Mutex
	subscribes int
	drop       bool
}

func (b *countingBus) Publish(ctx context.Context, s order.Snapshot) error {
	if b.drop {
		return nil
	}
	return b.SnapshotBus.Publish(ctx, s)
}

func (b *countingBus) Subscribe(ctx context.Context, id kernel.UUID, h ports.SnapshotHandler) (func(), error) {
	b.mu.Lock()
	b.subscribes++
	b.mu.Unlock()
	return b.SnapshotBus.Subscribe(ctx, id, h)
}

// recorder collects updates delivered to named observers.
type recorder struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	name   string
	status order.Status
}

func (r *recorder) observer(name string) broadcast.Observer {
	return func(u broadcast.Update) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries = append(r.entries, entry{name: name, status: u.Order.Status})
	}
}

func (r *recorder) count(name string, status order.Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.name == name && e.status == status {
			n++
		}
	}
	return n
}

func (r *recorder) snapshot() []entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entry(nil), r.entries...)
}

func testCatalog(t *testing.T) *zone.Catalog {
	t.Helper()
	newAsia, err := zone.NewZone("NEW_ASIA", "New Asia College", 8, kernel.MustMoney("5.00"),
		kernel.MustPoint(22.421197, 114.209186))
	require.NoError(t, err)
	cafe, err := zone.NewPickupPoint("STUDENT_CAFE", "CUHK Café", kernel.MustPoint(22.418461, 114.204712))
	require.NoError(t, err)
	c, err := zone.NewCatalog([]zone.Zone{newAsia}, []zone.PickupPoint{cafe},
		[]zone.Waypoint{{Name: "new asia", Point: newAsia.Point()}})
	require.NoError(t, err)
	return c
}

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()
	c := testCatalog(t)
	z, _ := c.Zone("NEW_ASIA")
	p, _ := c.Pickup("STUDENT_CAFE")
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), p, z, "", kernel.MustMoney("38.00"), createdAt)
	require.NoError(t, err)
	return o
}

func newHub(t *testing.T, bus ports.SnapshotBus, loader broadcast.Loader, poll time.Duration) *broadcast.Hub {
	t.Helper()
	eta, err := services.NewETAEstimator(testCatalog(t))
	require.NoError(t, err)

	hub := broadcast.NewHub(bus, loader, services.NewTrackingViewer(eta, 2*time.Minute), poll, nil)
	t.Cleanup(hub.Close)
	return hub
}

func claimed(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	c, err := order.RestoreOrder(o.Snapshot())
	require.NoError(t, err)
	require.NoError(t, c.Claim(kernel.NewUUID(), createdAt.Add(time.Minute)))
	return c
}

func TestHub_DeliversCurrentStateOnSubscribe(t *testing.T) {
	o := newPendingOrder(t)
	hub := newHub(t, inproc.NewSnapshotBus(8), &store{order: o}, time.Hour)
	rec := &recorder{}

	sub, err := hub.Subscribe(t.Context(), o.ID(), rec.observer("a"))
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return rec.count("a", order.Pending) == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_PushFansOutInRegistrationOrder(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t)
	bus := &countingBus{SnapshotBus: inproc.NewSnapshotBus(8)}
	hub := newHub(t, bus, &store{order: o}, time.Hour)
	rec := &recorder{}

	for _, name := range []string{"a", "b", "c"} {
		sub, err := hub.Subscribe(ctx, o.ID(), rec.observer(name))
		require.NoError(t, err)
		defer sub.Close()
	}
	require.Eventually(t, func() bool {
		return rec.count("a", order.Pending)+rec.count("b", order.Pending)+rec.count("c", order.Pending) == 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Notify(ctx, claimed(t, o).Snapshot()))

	require.Eventually(t, func() bool { return rec.count("c", order.Accepted) == 1 }, time.Second, 5*time.Millisecond)

	var got []string
	for _, e := range rec.snapshot() {
		if e.status == order.Accepted {
			got = append(got, e.name)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	bus.mu.Lock()
	assert.Equal(t, 1, bus.subscribes, "one bus subscription per order")
	bus.mu.Unlock()
}

func TestHub_DeduplicatesIdenticalSnapshots(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t)
	hub := newHub(t, inproc.NewSnapshotBus(8), &store{order: o}, time.Hour)
	rec := &recorder{}

	sub, err := hub.Subscribe(ctx, o.ID(), rec.observer("a"))
	require.NoError(t, err)
	defer sub.Close()
	require.Eventually(t, func() bool { return rec.count("a", order.Pending) == 1 }, time.Second, 5*time.Millisecond)

	accepted := claimed(t, o).Snapshot()
	require.NoError(t, hub.Notify(ctx, o.Snapshot()))
	require.NoError(t, hub.Notify(ctx, accepted))
	require.NoError(t, hub.Notify(ctx, accepted))

	require.Eventually(t, func() bool { return rec.count("a", order.Accepted) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.count("a", order.Pending))
	assert.Equal(t, 1, rec.count("a", order.Accepted))
}

func TestHub_PollRecoversMissedPush(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t)
	db := &store{order: o}
	bus := &countingBus{SnapshotBus: inproc.NewSnapshotBus(8), drop: true}
	hub := newHub(t, bus, db, time.Second)
	rec := &recorder{}

	sub, err := hub.Subscribe(ctx, o.ID(), rec.observer("a"))
	require.NoError(t, err)
	defer sub.Close()
	require.Eventually(t, func() bool { return rec.count("a", order.Pending) == 1 }, time.Second, 5*time.Millisecond)

	next := claimed(t, o)
	db.set(next)
	require.NoError(t, hub.Notify(ctx, next.Snapshot()), "the push is lost")

	require.Eventually(t, func() bool { return rec.count("a", order.Accepted) == 1 }, 4*time.Second, 20*time.Millisecond)
}

func TestHub_LatePollDoesNotRegress(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t)
	loader := &gatedLoader{store: &store{order: o}, read: make(chan struct{}), release: make(chan struct{})}
	hub := newHub(t, inproc.NewSnapshotBus(8), loader, time.Hour)
	rec := &recorder{}

	sub, err := hub.Subscribe(ctx, o.ID(), rec.observer("a"))
	require.NoError(t, err)
	defer sub.Close()
	release := sync.OnceFunc(func() { close(loader.release) })
	defer release()

	// The initial poll has read the pending row and is held.
	<-loader.read
	require.NoError(t, hub.Notify(ctx, claimed(t, o).Snapshot()))
	require.Eventually(t, func() bool { return rec.count("a", order.Accepted) == 1 }, time.Second, 5*time.Millisecond)

	release()
	time.Sleep(50 * time.Millisecond)

	entries := rec.snapshot()
	require.NotEmpty(t, entries)
	assert.Equal(t, order.Accepted, entries[len(entries)-1].status)
	assert.Equal(t, 0, rec.count("a", order.Pending))
}

func TestHub_NoDeliveryAfterClose(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t)
	hub := newHub(t, inproc.NewSnapshotBus(8), &store{order: o}, time.Hour)
	rec := &recorder{}

	sub, err := hub.Subscribe(ctx, o.ID(), rec.observer("a"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count("a", order.Pending) == 1 }, time.Second, 5*time.Millisecond)

	sub.Close()
	sub.Close()
	<-sub.Done()
	require.NoError(t, hub.Notify(ctx, claimed(t, o).Snapshot()))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, rec.count("a", order.Accepted))
}

func TestHub_ContextCancellationCloses(t *testing.T) {
	o := newPendingOrder(t)
	hub := newHub(t, inproc.NewSnapshotBus(8), &store{order: o}, time.Hour)

	ctx, cancel := context.WithCancel(t.Context())
	sub, err := hub.Subscribe(ctx, o.ID(), func(broadcast.Update) {})
	require.NoError(t, err)

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription outlived its context")
	}
}

func TestHub_Subscribe_Validation(t *testing.T) {
	hub := newHub(t, inproc.NewSnapshotBus(8), &store{}, time.Hour)

	_, err := hub.Subscribe(t.Context(), kernel.NewUUID(), nil)
	require.ErrorIs(t, err, broadcast.ErrObserverIsNil)

	_, err = hub.Subscribe(t.Context(), kernel.UUID{}, func(broadcast.Update) {})
	require.Error(t, err)

	hub.Close()
	_, err = hub.Subscribe(t.Context(), kernel.NewUUID(), func(broadcast.Update) {})
	require.ErrorIs(t, err, broadcast.ErrHubClosed)
}
