package orderrepo_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/zone"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var createdAt = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := postgres.Open(postgres.Options{Driver: postgres.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestOrder(t *testing.T, customerID kernel.UUID, at time.Time) *order.Order {
	t.Helper()
	newAsia, err := zone.NewZone("NEW_ASIA", "New Asia College", 8, kernel.MustMoney("5.00"),
		kernel.MustPoint(22.421197, 114.209186))
	require.NoError(t, err)
	cafe, err := zone.NewPickupPoint("STUDENT_CAFE", "CUHK Café", kernel.MustPoint(22.418461, 114.204712))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), customerID, cafe, newAsia, "room 301", kernel.MustMoney("38.00"), at)
	require.NoError(t, err)
	return o
}
