// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are built on github.com/robfig/cron/v3. A run that is still in
// progress when the next one is due is skipped.
//
// # Available Jobs
//
// StaleOrderMonitorJob runs on STALE_CHECK_SCHEDULE (default "@every 30s").
// It lists accepted and picked_up orders whose partner has not reported a
// location within STALE_AFTER, logs each at warn and sets the
// dispatch_stale_orders gauge. Stuck orders are left for an operator.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(staleOrdersHandler, 2*time.Minute, "@every 30s", logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
package jobs
