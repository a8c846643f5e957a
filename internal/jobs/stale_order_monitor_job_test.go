package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type StaleOrderListerMock struct {
	mock.Mock
}

func (m *StaleOrderListerMock) Handle(
	ctx context.Context,
	query queries.ListStaleOrdersQuery,
) ([]queries.ListStaleOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	stale, _ := args.Get(0).([]queries.ListStaleOrdersQueryResponse)
	return stale, args.Error(1)
}

func TestStaleOrderMonitorJob_Run_LogsEachStuckOrder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	last := time.Now().Add(-5 * time.Minute)
	stale := []queries.ListStaleOrdersQueryResponse{
		{ID: kernel.NewUUID(), PartnerID: kernel.NewUUID(), Status: "accepted", Age: 10 * time.Minute},
		{ID: kernel.NewUUID(), PartnerID: kernel.NewUUID(), Status: "picked_up", LastLocationUpdate: &last, Age: 5 * time.Minute},
	}

	lister := &StaleOrderListerMock{}
	lister.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListStaleOrdersQuery) bool {
		return q.Threshold() == 2*time.Minute
	})).Return(stale, nil).Once()

	job := jobs.NewStaleOrderMonitorJob(lister, 2*time.Minute, "", zap.New(core))
	job.Run()

	lister.AssertExpectations(t)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.StaleOrders), 0)

	warnings := logs.FilterMessage("order has a stale partner location").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, stale[0].ID.String(), warnings[0].ContextMap()["order_id"])
	assert.Equal(t, true, warnings[0].ContextMap()["never_reported"])
	assert.Equal(t, "stale_order_monitor_job", warnings[0].ContextMap()["component"])
	assert.NotContains(t, warnings[1].ContextMap(), "never_reported")
}

func TestStaleOrderMonitorJob_Run_ListerFails(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics.StaleOrders.Set(7)

	lister := &StaleOrderListerMock{}
	lister.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	job := jobs.NewStaleOrderMonitorJob(lister, time.Minute, "", zap.New(core))
	job.Run()

	assert.Equal(t, 1, logs.FilterMessage("stale order check failed").Len())
	assert.InDelta(t, 7, testutil.ToFloat64(metrics.StaleOrders), 0, "gauge keeps the last known count")
}

func TestStaleOrderMonitorJob_Run_InvalidThreshold(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	lister := &StaleOrderListerMock{}

	job := jobs.NewStaleOrderMonitorJob(lister, 0, "", zap.New(core))
	job.Run()

	lister.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	assert.Equal(t, 1, logs.FilterMessage("invalid stale threshold").Len())
}

func TestStaleOrderMonitorJob_StartRunsOnSchedule(t *testing.T) {
	var runs atomic.Int32
	lister := &StaleOrderListerMock{}
	lister.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { runs.Add(1) }).
		Return([]queries.ListStaleOrdersQueryResponse{}, nil)

	job := jobs.NewStaleOrderMonitorJob(lister, time.Minute, "@every 1s", nil)
	require.NoError(t, job.Start())
	t.Cleanup(job.Stop)

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestJobManager_StartAll_InvalidSchedule(t *testing.T) {
	manager := jobs.NewJobManager(&StaleOrderListerMock{}, time.Minute, "every now and then", nil)

	err := manager.StartAll()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale order monitor")
}
