package jobs

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	staleOrderMonitorJob *StaleOrderMonitorJob
}

// NewJobManager creates a job manager with all required jobs.
func NewJobManager(
	staleOrders StaleOrderLister,
	staleAfter time.Duration,
	staleCheckSchedule string,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		staleOrderMonitorJob: NewStaleOrderMonitorJob(staleOrders, staleAfter, staleCheckSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.staleOrderMonitorJob.Start(); err != nil {
		return fmt.Errorf("failed to start stale order monitor job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleOrderMonitorJob.Stop()
}
