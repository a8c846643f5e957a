package jobs

import (
	"context"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultStaleCheckSchedule is used when no schedule is configured.
const DefaultStaleCheckSchedule = "@every 30s"

// StaleOrderLister finds orders whose partner stopped reporting.
type StaleOrderLister interface {
	Handle(ctx context.Context, query queries.ListStaleOrdersQuery) ([]queries.ListStaleOrdersQueryResponse, error)
}

// StaleOrderMonitorJob periodically surfaces active orders with a silent
// partner. It only logs and exports the count; orders are never reassigned.
type StaleOrderMonitorJob struct {
	lister    StaleOrderLister
	threshold time.Duration
	schedule  string
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewStaleOrderMonitorJob creates the job. An empty schedule falls back to
// DefaultStaleCheckSchedule.
func NewStaleOrderMonitorJob(
	lister StaleOrderLister,
	threshold time.Duration,
	schedule string,
	log *zap.Logger,
) *StaleOrderMonitorJob {
	if schedule == "" {
		schedule = DefaultStaleCheckSchedule
	}
	l := logger.Component(log, "stale_order_monitor_job")
	return &StaleOrderMonitorJob{
		lister:    lister,
		threshold: threshold,
		schedule:  schedule,
		timeout:   10 * time.Second,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger: l,
	}
}

// Start schedules the check and starts the cron runner.
func (j *StaleOrderMonitorJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("stale order monitor started",
		zap.String("schedule", j.schedule),
		zap.Duration("threshold", j.threshold))
	return nil
}

// Run performs one check.
func (j *StaleOrderMonitorJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	query, err := queries.NewListStaleOrdersQuery(j.threshold)
	if err != nil {
		j.logger.Error("invalid stale threshold", zap.Duration("threshold", j.threshold), zap.Error(err))
		return
	}

	stale, err := j.lister.Handle(ctx, query)
	if err != nil {
		j.logger.Error("stale order check failed", zap.Error(err))
		return
	}

	metrics.StaleOrders.Set(float64(len(stale)))
	for _, o := range stale {
		fields := []zap.Field{
			zap.String("order_id", o.ID.String()),
			zap.String("partner_id", o.PartnerID.String()),
			zap.String("status", o.Status),
			zap.Duration("silent_for", o.Age),
		}
		if o.LastLocationUpdate == nil {
			fields = append(fields, zap.Bool("never_reported", true))
		}
		j.logger.Warn("order has a stale partner location", fields...)
	}
}

// Stop waits for a running check to finish.
func (j *StaleOrderMonitorJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("stale order monitor stopped")
}
