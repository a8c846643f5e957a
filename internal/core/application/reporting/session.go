package reporting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reporter submits one location report.
type Reporter interface {
	Handle(ctx context.Context, cmd commands.ReportLocationCommand) error
}

// Session feeds the reports of one source into one order.
type Session struct {
	orderID   kernel.UUID
	partnerID kernel.UUID
	source    tracking.LocationSource
	reporter  Reporter
	log       *zap.Logger
	onEnd     func(*Session)

	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

func newSession(
	orderID, partnerID kernel.UUID,
	source tracking.LocationSource,
	reporter Reporter,
	log *zap.Logger,
	onEnd func(*Session),
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		orderID:   orderID,
		partnerID: partnerID,
		source:    source,
		reporter:  reporter,
		log: log.With(
			zap.String("order_id", orderID.String()),
			zap.String("partner_id", partnerID.String()),
		),
		onEnd:  onEnd,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (s *Session) start(tick time.Duration) error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", tick), s.tick); err != nil {
		return err
	}
	s.cron.Start()
	metrics.ReportingSessions.Inc()
	s.log.Info("reporting session started")
	return nil
}

func (s *Session) OrderID() kernel.UUID   { return s.orderID }
func (s *Session) PartnerID() kernel.UUID { return s.partnerID }

// Done is closed once the session has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stop ends the session and waits for an in-flight tick. It is idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.cron.Stop().Done()
		if s.onEnd != nil {
			s.onEnd(s)
		}
		metrics.ReportingSessions.Dec()
		close(s.done)
		s.log.Info("reporting session stopped")
	})
}

func (s *Session) tick() {
	if s.ctx.Err() != nil {
		return
	}

	report, ok := s.source.Next(time.Now())
	if !ok {
		return
	}

	cmd, err := commands.NewReportLocationCommand(s.orderID, s.partnerID, report)
	if err != nil {
		s.log.Warn("dropping invalid location report", zap.Error(err))
		return
	}

	err = s.reporter.Handle(s.ctx, cmd)
	switch {
	case err == nil:
	case s.ctx.Err() != nil:
	case isFinal(err):
		s.log.Info("order no longer reportable", zap.Error(err))
		// Stop waits for this tick to return.
		go s.Stop()
	default:
		s.log.Warn("location report failed", zap.Error(err))
	}
}

func isFinal(err error) bool {
	return errors.Is(err, errs.ErrNotOwner) ||
		errors.Is(err, errs.ErrInvalidState) ||
		errors.Is(err, errs.ErrObjectNotFound)
}
