package catalog_test

import (
	"testing"

	"dispatch/internal/adapters/out/catalog"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	campus, err := catalog.Default()
	require.NoError(t, err)

	cafe, err := campus.Catalog.Pickup("STUDENT_CAFE")
	require.NoError(t, err)
	assert.Equal(t, "CUHK Café", cafe.Name())
	assert.InDelta(t, 22.418461, cafe.Point().Lat(), 1e-9)

	newAsia, err := campus.Catalog.Zone("NEW_ASIA")
	require.NoError(t, err)
	assert.Equal(t, "5.00", newAsia.DeliveryFee().String())

	codes := make([]string, 0)
	for _, z := range campus.Catalog.Zones() {
		codes = append(codes, z.Code())
	}
	assert.Equal(t, []string{"NEW_ASIA", "SHAW", "UNITED", "CHUNG_CHI", "MEDICAL"}, codes)

	_, err = campus.Catalog.Zone("MOON")
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestDefault_Route(t *testing.T) {
	campus, err := catalog.Default()
	require.NoError(t, err)

	require.Len(t, campus.Route, 15)
	assert.Equal(t, tracking.HeadingToPickup, campus.Route[0].Phase)
	assert.Equal(t, tracking.AtPickup, campus.Route[4].Phase)
	assert.Equal(t, tracking.AtCustomer, campus.Route[14].Phase)
	assert.Equal(t, 5, tracking.StartOffset(campus.Route, order.PickedUp))

	newAsia, err := campus.Catalog.Zone("NEW_ASIA")
	require.NoError(t, err)
	assert.True(t, campus.Route[14].Point.IsEqual(newAsia.Point()))
}

func TestParse_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := catalog.Parse([]byte("zones: ["))
		require.Error(t, err)
	})

	t.Run("invalid entries are all reported", func(t *testing.T) {
		doc := `
pickups:
  - {code: CAFE, name: Café, lat: 95, lng: 114.2}
zones:
  - {code: Z, name: Zone, walk_time_minutes: 3, delivery_fee: "abc", lat: 22.4, lng: 114.2}
waypoints:
  - {name: W, lat: 22.4, lng: 114.2}
route:
  - {name: S, phase: flying, lat: 22.4, lng: 114.2}
`
		_, err := catalog.Parse([]byte(doc))
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.ErrorContains(t, err, `zone "Z"`)
		assert.ErrorContains(t, err, "route step 0")
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, err := catalog.Parse([]byte("route: []"))
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
