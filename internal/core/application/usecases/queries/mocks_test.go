package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/zone"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderReader) List(ctx context.Context, filter ports.OrderFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]*order.Order); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPresence struct{ mock.Mock }

func (m *MockPresence) IsOnline(ctx context.Context, partnerID kernel.UUID) (bool, error) {
	args := m.Called(ctx, partnerID)
	return args.Bool(0), args.Error(1)
}

var createdAt = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *zone.Catalog {
	t.Helper()
	newAsia, err := zone.NewZone("NEW_ASIA", "New Asia College", 8, kernel.MustMoney("5.00"),
		kernel.MustPoint(22.421197, 114.209186))
	require.NoError(t, err)
	cafe, err := zone.NewPickupPoint("STUDENT_CAFE", "CUHK Café", kernel.MustPoint(22.418461, 114.204712))
	require.NoError(t, err)
	c, err := zone.NewCatalog([]zone.Zone{newAsia}, []zone.PickupPoint{cafe}, []zone.Waypoint{
		{Name: "shaw", Point: kernel.MustPoint(22.419234, 114.207789)},
		{Name: "new asia", Point: newAsia.Point()},
	})
	require.NoError(t, err)
	return c
}

func testViewer(t *testing.T) *services.TrackingViewer {
	t.Helper()
	eta, err := services.NewETAEstimator(testCatalog(t))
	require.NoError(t, err)
	return services.NewTrackingViewer(eta, 2*time.Minute)
}

func newOrder(t *testing.T, customerID kernel.UUID, at time.Time) *order.Order {
	t.Helper()
	c := testCatalog(t)
	z, _ := c.Zone("NEW_ASIA")
	p, _ := c.Pickup("STUDENT_CAFE")
	o, err := order.NewOrder(kernel.NewUUID(), customerID, p, z, "", kernel.MustMoney("38.00"), at)
	require.NoError(t, err)
	return o
}
