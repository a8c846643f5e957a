package orderrepo_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_AddAndGet(t *testing.T) {
	ctx := t.Context()
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))
	o := newTestOrder(t, kernel.NewUUID(), createdAt)

	require.NoError(t, repo.Add(ctx, o))
	assert.True(t, o.Changes().IsEmpty())

	got, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.True(t, o.Snapshot().Equal(got.Snapshot()))
	assert.Equal(t, "43.00", got.Total().String())
	assert.Equal(t, order.Pending, got.Status())
	assert.Nil(t, got.PartnerID())
}

func TestGormOrderRepository_Get_NotFound(t *testing.T) {
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))

	got, err := repo.Get(t.Context(), kernel.NewUUID())

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Nil(t, got)
}

func TestGormOrderRepository_List(t *testing.T) {
	ctx := t.Context()
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))
	alice, bob, partnerID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	first := newTestOrder(t, alice, createdAt)
	second := newTestOrder(t, bob, createdAt.Add(time.Minute))
	third := newTestOrder(t, alice, createdAt.Add(2*time.Minute))
	require.NoError(t, third.Claim(partnerID, createdAt.Add(3*time.Minute)))
	for _, o := range []*order.Order{third, second, first} {
		require.NoError(t, repo.Add(ctx, o))
	}

	t.Run("should return everything oldest first", func(t *testing.T) {
		all, err := repo.List(ctx, ports.OrderFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, first.ID(), all[0].ID())
		assert.Equal(t, second.ID(), all[1].ID())
		assert.Equal(t, third.ID(), all[2].ID())
	})

	t.Run("should filter by status", func(t *testing.T) {
		pending, err := repo.List(ctx, ports.OrderFilter{Statuses: []order.Status{order.Pending}})
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("should filter by customer", func(t *testing.T) {
		found, err := repo.List(ctx, ports.OrderFilter{CustomerID: &alice})
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, first.ID(), found[0].ID())
	})

	t.Run("should filter by partner", func(t *testing.T) {
		found, err := repo.List(ctx, ports.OrderFilter{PartnerID: &partnerID})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, third.ID(), found[0].ID())
	})

	t.Run("should apply the limit", func(t *testing.T) {
		found, err := repo.List(ctx, ports.OrderFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, first.ID(), found[0].ID())
	})
}

func TestGormOrderRepository_ConditionalUpdate_Claim(t *testing.T) {
	ctx := t.Context()
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))
	o := newTestOrder(t, kernel.NewUUID(), createdAt)
	require.NoError(t, repo.Add(ctx, o))

	p, q := kernel.NewUUID(), kernel.NewUUID()
	claimable := ports.ExpectedState{Statuses: []order.Status{order.Pending}, Unclaimed: true}

	byP, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	byQ, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)

	require.NoError(t, byP.Claim(p, createdAt.Add(time.Minute)))
	require.NoError(t, byQ.Claim(q, createdAt.Add(time.Minute)))

	affected, err := repo.ConditionalUpdate(ctx, byP, claimable)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.True(t, byP.Changes().IsEmpty())

	affected, err = repo.ConditionalUpdate(ctx, byQ, claimable)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.False(t, byQ.Changes().IsEmpty(), "a failed write keeps the change set")

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Accepted, stored.Status())
	require.NotNil(t, stored.PartnerID())
	assert.Equal(t, p, *stored.PartnerID())
	require.NotNil(t, stored.AcceptedAt())
	assert.True(t, stored.AcceptedAt().Equal(createdAt.Add(time.Minute)))
}

func TestGormOrderRepository_ConditionalUpdate_LocationNeverClobbersStatus(t *testing.T) {
	ctx := t.Context()
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))
	partnerID := kernel.NewUUID()
	o := newTestOrder(t, kernel.NewUUID(), createdAt)
	require.NoError(t, o.Claim(partnerID, createdAt.Add(time.Minute)))
	require.NoError(t, repo.Add(ctx, o))

	reporter, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	driver, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)

	require.NoError(t, driver.Transition(order.PickedUp, partnerID, createdAt.Add(2*time.Minute)))
	affected, err := repo.ConditionalUpdate(ctx, driver, ports.ExpectedState{Statuses: []order.Status{order.Accepted}})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	pos := kernel.MustPoint(22.4185, 114.2047)
	require.NoError(t, reporter.ReportLocation(partnerID, pos, createdAt.Add(3*time.Minute)))
	affected, err = repo.ConditionalUpdate(ctx, reporter, ports.ExpectedState{
		Statuses:  []order.Status{order.Accepted, order.PickedUp},
		PartnerID: &partnerID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.PickedUp, stored.Status())
	require.NotNil(t, stored.PickedUpAt())
	require.NotNil(t, stored.PartnerLocation())
	assert.True(t, stored.PartnerLocation().IsEqual(pos))
}

func TestGormOrderRepository_ConditionalUpdate_RatingOnce(t *testing.T) {
	ctx := t.Context()
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))
	partnerID := kernel.NewUUID()
	o := newTestOrder(t, kernel.NewUUID(), createdAt)
	require.NoError(t, o.Claim(partnerID, createdAt.Add(time.Minute)))
	require.NoError(t, o.Transition(order.PickedUp, partnerID, createdAt.Add(2*time.Minute)))
	require.NoError(t, o.Transition(order.Delivered, partnerID, createdAt.Add(5*time.Minute)))
	require.NoError(t, repo.Add(ctx, o))

	rateOnce := ports.ExpectedState{Statuses: []order.Status{order.Delivered}, Unrated: true}

	first, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	second, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	require.NoError(t, first.RateDelivery(o.CustomerID(), 5, "great"))
	require.NoError(t, second.RateDelivery(o.CustomerID(), 1, "changed my mind"))

	affected, err := repo.ConditionalUpdate(ctx, first, rateOnce)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.ConditionalUpdate(ctx, second, rateOnce)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.Rating())
	assert.Equal(t, 5, *stored.Rating())
	assert.Equal(t, "great", stored.Feedback())
}

func TestGormOrderRepository_ConditionalUpdate_NothingToWrite(t *testing.T) {
	ctx := t.Context()
	repo := orderrepo.NewGormOrderRepository(newSQLite(t))
	o := newTestOrder(t, kernel.NewUUID(), createdAt)
	require.NoError(t, repo.Add(ctx, o))

	_, err := repo.ConditionalUpdate(ctx, o, ports.ExpectedState{})

	require.ErrorIs(t, err, orderrepo.ErrNothingToUpdate)
}

func TestGormOrderRepository_Get_RejectsCorruptRow(t *testing.T) {
	ctx := t.Context()
	db := newSQLite(t)
	repo := orderrepo.NewGormOrderRepository(db)
	o := newTestOrder(t, kernel.NewUUID(), createdAt)
	require.NoError(t, repo.Add(ctx, o))

	require.NoError(t, db.Exec("UPDATE orders SET status = ? WHERE id = ?", "accepted", o.ID().Bytes()).Error)

	_, err := repo.Get(ctx, o.ID())

	require.Error(t, err, "accepted without a partner must not restore")
}
