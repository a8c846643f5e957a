package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logger"

	"go.uber.org/zap"
)

// DefaultTick is the simulated route interval.
const DefaultTick = 2 * time.Second

var (
	ErrManagerClosed  = errors.New("reporting manager is closed")
	ErrSourceIsNil    = errors.New("location source is required")
	ErrRouteIsMissing = errors.New("simulated route is not configured")
)

// OrderLoader reads an order so that a session is only started for the
// partner that owns an active order.
type OrderLoader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

type sessionKey struct {
	orderID   kernel.UUID
	partnerID kernel.UUID
}

// Manager owns the reporting sessions of the process, at most one per
// (order, partner). It implements commands.SessionStopper.
type Manager struct {
	orders   OrderLoader
	reporter Reporter
	route    []tracking.RouteStep
	tick     time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	closed   bool
	sessions map[sessionKey]*Session
}

func NewManager(
	orders OrderLoader,
	reporter Reporter,
	route []tracking.RouteStep,
	tick time.Duration,
	log *zap.Logger,
) *Manager {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Manager{
		orders:   orders,
		reporter: reporter,
		route:    append([]tracking.RouteStep(nil), route...),
		tick:     tick,
		log:      logger.Component(log, "reporting"),
		sessions: make(map[sessionKey]*Session),
	}
}

// Start runs a session reporting from source. A running session for the
// same order and partner is replaced.
func (m *Manager) Start(
	ctx context.Context,
	orderID, partnerID kernel.UUID,
	source tracking.LocationSource,
) (*Session, error) {
	if source == nil {
		return nil, ErrSourceIsNil
	}
	if _, err := m.reportable(ctx, orderID, partnerID); err != nil {
		return nil, err
	}
	return m.run(orderID, partnerID, source)
}

// StartSimulation runs a session that plays the configured route. Orders
// already picked up resume from the leg towards the customer.
func (m *Manager) StartSimulation(ctx context.Context, orderID, partnerID kernel.UUID) (*Session, error) {
	if len(m.route) == 0 {
		return nil, ErrRouteIsMissing
	}
	o, err := m.reportable(ctx, orderID, partnerID)
	if err != nil {
		return nil, err
	}
	return m.run(orderID, partnerID, tracking.NewRoutePlayer(m.route, o.Status()))
}

// Stop ends the session of the order and partner, if any, and reports
// whether one was running.
func (m *Manager) Stop(orderID, partnerID kernel.UUID) bool {
	m.mu.Lock()
	s, ok := m.sessions[sessionKey{orderID: orderID, partnerID: partnerID}]
	m.mu.Unlock()

	if ok {
		s.Stop()
	}
	return ok
}

// StopPartner ends every session of the partner.
func (m *Manager) StopPartner(partnerID kernel.UUID) {
	m.mu.Lock()
	var matched []*Session
	for key, s := range m.sessions {
		if key.partnerID.IsEqual(partnerID) {
			matched = append(matched, s)
		}
	}
	m.mu.Unlock()

	for _, s := range matched {
		s.Stop()
	}
}

// StopAll ends every session and rejects new ones.
func (m *Manager) StopAll() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Stop()
	}
}

// Running reports whether a session exists for the order and partner.
func (m *Manager) Running(orderID, partnerID kernel.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[sessionKey{orderID: orderID, partnerID: partnerID}]
	return ok
}

func (m *Manager) reportable(ctx context.Context, orderID, partnerID kernel.UUID) (*order.Order, error) {
	if err := errors.Join(orderID.Validate(), partnerID.Validate()); err != nil {
		return nil, err
	}
	o, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	owner := o.PartnerID()
	if owner == nil || !owner.IsEqual(partnerID) {
		return nil, errs.NewNotOwnerError(partnerID, orderID)
	}
	if !o.Status().IsActive() {
		return nil, errs.NewInvalidStateError(orderID, o.Status())
	}
	return o, nil
}

func (m *Manager) run(orderID, partnerID kernel.UUID, source tracking.LocationSource) (*Session, error) {
	key := sessionKey{orderID: orderID, partnerID: partnerID}
	s := newSession(orderID, partnerID, source, m.reporter, m.log, m.forget)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if err := s.start(m.tick); err != nil {
		m.mu.Unlock()
		s.cancel()
		return nil, err
	}
	displaced := m.sessions[key]
	m.sessions[key] = s
	m.mu.Unlock()

	if displaced != nil {
		displaced.Stop()
	}
	return s, nil
}

// forget drops s from the index unless it was already replaced.
func (m *Manager) forget(s *Session) {
	key := sessionKey{orderID: s.orderID, partnerID: s.partnerID}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[key] == s {
		delete(m.sessions, key)
	}
}
