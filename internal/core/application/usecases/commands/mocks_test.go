package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ConditionalUpdate(
	ctx context.Context,
	o *order.Order,
	expected ports.ExpectedState,
) (int64, error) {
	args := m.Called(ctx, o, expected)
	return args.Get(0).(int64), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPresence struct{ mock.Mock }

func (m *MockPresence) SetOnline(ctx context.Context, partnerID kernel.UUID, online bool) error {
	args := m.Called(ctx, partnerID, online)
	return args.Error(0)
}

func (m *MockPresence) IsOnline(ctx context.Context, partnerID kernel.UUID) (bool, error) {
	args := m.Called(ctx, partnerID)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, snapshot order.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, event ports.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockSessionStopper struct{ mock.Mock }

func (m *MockSessionStopper) StopPartner(partnerID kernel.UUID) {
	m.Called(partnerID)
}

var createdAt = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

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

func pendingOrder(t *testing.T, customerID kernel.UUID) *order.Order {
	t.Helper()
	c := testCatalog(t)
	z, _ := c.Zone("NEW_ASIA")
	p, _ := c.Pickup("STUDENT_CAFE")

	o, err := order.NewOrder(kernel.NewUUID(), customerID, p, z, "", kernel.MustMoney("38.00"), createdAt)
	require.NoError(t, err)
	return o
}

// restored rebuilds o from its snapshot, giving a second independent copy
// as a repository read would.
func restored(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	r, err := order.RestoreOrder(o.Snapshot())
	require.NoError(t, err)
	return r
}

func acceptedOrder(t *testing.T, customerID, partnerID kernel.UUID) *order.Order {
	t.Helper()
	o := pendingOrder(t, customerID)
	require.NoError(t, o.Claim(partnerID, createdAt.Add(time.Minute)))
	return restored(t, o)
}

func silentAnnouncer() *commands.Announcer {
	return commands.NewAnnouncer(nil, nil, nil)
}

// memoryStore is a goroutine-safe record store whose ConditionalUpdate is an
// atomic compare-and-swap, used to exercise concurrent command handlers.
type memoryStore struct {
	mu      sync.Mutex
	records map[kernel.UUID]order.Snapshot
}

func newMemoryStore(orders ...*order.Order) *memoryStore {
	s := &memoryStore{records: make(map[kernel.UUID]order.Snapshot)}
	for _, o := range orders {
		s.records[o.ID()] = o.Snapshot()
	}
	return s
}

func (s *memoryStore) Create() commands.OrderUoW { return memoryUoW{store: s} }

func (s *memoryStore) snapshot(id kernel.UUID) order.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

type memoryUoW struct{ store *memoryStore }

func (u memoryUoW) Begin(context.Context) error { return nil }
func (u memoryUoW) Commit(context.Context) error { return nil }
func (u memoryUoW) Rollback(context.Context) error { return nil }
func (u memoryUoW) OrderRepository() ports.OrderRepository { return u.store }

func (s *memoryStore) Add(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[o.ID()] = o.Snapshot()
	return nil
}

func (s *memoryStore) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	s.mu.Lock()
	snap, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return order.RestoreOrder(snap)
}

func (s *memoryStore) List(context.Context, ports.OrderFilter) ([]*order.Order, error) {
	return nil, nil
}

func (s *memoryStore) ConditionalUpdate(_ context.Context, o *order.Order, expected ports.ExpectedState) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.records[o.ID()]
	if len(expected.Statuses) > 0 && !containsStatus(expected.Statuses, current.Status) {
		return 0, nil
	}
	if expected.Unclaimed && current.PartnerID != nil {
		return 0, nil
	}
	if expected.PartnerID != nil && (current.PartnerID == nil || !current.PartnerID.IsEqual(*expected.PartnerID)) {
		return 0, nil
	}

	c := o.Changes()
	if c.Status != nil {
		current.Status = *c.Status
	}
	if c.PartnerID != nil {
		current.PartnerID = c.PartnerID
	}
	if c.AcceptedAt != nil {
		current.AcceptedAt = c.AcceptedAt
	}
	if c.PartnerLocation != nil {
		current.PartnerLocation = c.PartnerLocation
		current.LastLocationUpdate = c.LastLocationUpdate
	}
	s.records[o.ID()] = current
	o.ClearChanges()
	return 1, nil
}

func containsStatus(list []order.Status, s order.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
