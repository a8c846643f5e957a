package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/catalog"
	"dispatch/internal/adapters/out/inproc"
	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/application/broadcast"
	"dispatch/internal/core/application/reporting"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type funcOrderUoWFactory func() commands.OrderUoW

func (f funcOrderUoWFactory) Create() commands.OrderUoW { return f() }

// app is the service wired on SQLite and in-process transports.
type app struct {
	server   *httptest.Server
	sessions *reporting.Manager
}

func newApp(t *testing.T, opts httpin.Options) *app {
	t.Helper()

	db, err := postgres_adapter.Open(postgres_adapter.Options{
		Driver:     postgres_adapter.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	require.NoError(t, postgres_adapter.Migrate(db))

	uow := postgres_adapter.NewGormUnitOfWorkFactory(db)
	uowFactory := funcOrderUoWFactory(func() commands.OrderUoW { return uow.Create() })
	repo := orderrepo.NewGormOrderRepository(db)

	campus, err := catalog.Default()
	require.NoError(t, err)
	eta, err := services.NewETAEstimator(campus.Catalog)
	require.NoError(t, err)
	viewer := services.NewTrackingViewer(eta, 2*time.Minute)

	presence := inproc.NewPresence()
	hub := broadcast.NewHub(inproc.NewSnapshotBus(inproc.DefaultBuffer), repo, viewer, time.Hour, nil)
	t.Cleanup(hub.Close)
	announcer := commands.NewAnnouncer(hub, nil, nil)

	report := commands.NewReportLocationCommandHandler(uowFactory, announcer)
	sessions := reporting.NewManager(repo, &report, campus.Route, time.Second, nil)
	t.Cleanup(sessions.StopAll)

	create := commands.NewCreateOrderCommandHandler(uowFactory, campus.Catalog, announcer)
	claim := commands.NewClaimOrderCommandHandler(uowFactory, presence, announcer)
	transition := commands.NewTransitionOrderCommandHandler(uowFactory, announcer)
	rate := commands.NewRateDeliveryCommandHandler(uowFactory, announcer)
	availability := commands.NewSetPartnerAvailabilityCommandHandler(presence, sessions)

	opts.JWTSecret = secret
	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:     &create,
		ClaimOrder:      &claim,
		TransitionOrder: &transition,
		ReportLocation:  &report,
		RateDelivery:    &rate,
		SetAvailability: &availability,
		GetTracking:     queries.NewGetOrderTrackingQueryHandler(repo, viewer),
		ListOrders:      queries.NewListOrdersQueryHandler(repo, viewer),
		ListOffers:      queries.NewListOffersQueryHandler(repo, presence, viewer),
		Zones:           campus.Catalog,
		Sessions:        sessions,
		Broadcaster:     hub,
	}, opts)

	ts := httptest.NewServer(server.NewEcho())
	t.Cleanup(ts.Close)
	return &app{server: ts, sessions: sessions}
}

// client issues requests as one actor.
type client struct {
	t     *testing.T
	base  string
	id    kernel.UUID
	token string
}

func (a *app) client(t *testing.T) *client {
	t.Helper()
	id := kernel.NewUUID()
	token, err := httpin.IssueToken(secret, id, time.Hour)
	require.NoError(t, err)
	return &client{t: t, base: a.server.URL, id: id, token: token}
}

func (c *client) do(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func (c *client) view(method, path string, body any, want int) httpin.TrackingView {
	c.t.Helper()
	status, data := c.do(method, path, body)
	require.Equal(c.t, want, status, string(data))
	var v httpin.TrackingView
	require.NoError(c.t, json.Unmarshal(data, &v))
	return v
}

func (c *client) failure(method, path string, body any, want int) httpin.Error {
	c.t.Helper()
	status, data := c.do(method, path, body)
	require.Equal(c.t, want, status, string(data))
	var e httpin.Error
	require.NoError(c.t, json.Unmarshal(data, &e))
	return e
}

func (c *client) placeOrder() httpin.TrackingView {
	c.t.Helper()
	return c.view(http.MethodPost, "/orders", httpin.NewOrder{
		PickupCode: "STUDENT_CAFE",
		ZoneCode:   "NEW_ASIA",
		Details:    "Room 301",
		Subtotal:   "38.00",
	}, http.StatusCreated)
}

func (c *client) goOnline() {
	c.t.Helper()
	status, data := c.do(http.MethodPut, "/partners/me/availability", httpin.Availability{Online: true})
	require.Equal(c.t, http.StatusOK, status, string(data))
}
