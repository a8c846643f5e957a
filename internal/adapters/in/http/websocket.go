package http

import (
	"context"
	"time"

	"dispatch/internal/core/application/broadcast"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// DeviceError is written back on the device stream for a rejected fix.
type DeviceError struct {
	Error string `json:"error"`
}

// WatchOrder handles GET /ws/orders/:id. After the handshake the client
// receives the current view and then every change to the order.
func (s *Server) WatchOrder(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}

	// Authorize before upgrading so that refusals are plain HTTP answers.
	query, err := queries.NewGetOrderTrackingQuery(orderID, actor)
	if err != nil {
		return badRequest(c, err)
	}
	if _, err = s.h.GetTracking.Handle(c.Request().Context(), query); err != nil {
		return s.fail(c, err)
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has answered the client.
		return nil
	}
	defer conn.Close()

	log := s.log.With(zap.String("order_id", orderID.String()), zap.String("actor", actor.String()))
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// A slow client only ever misses intermediate states: the slot holds
	// the latest update.
	latest := make(chan broadcast.Update, 1)
	sub, err := s.h.Broadcaster.Subscribe(ctx, orderID, func(u broadcast.Update) {
		select {
		case latest <- u:
		default:
			select {
			case <-latest:
			default:
			}
			latest <- u
		}
	})
	if err != nil {
		log.Error("subscribe failed", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return nil
	}
	defer sub.Close()

	go discardReads(conn, cancel)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			return nil
		case u := <-latest:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteJSON(toTrackingView(u)); err != nil {
				log.Debug("viewer gone", zap.Error(err))
				return nil
			}
		case <-ping.C:
			if err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

// StreamDeviceLocation handles GET /ws/partner/orders/:id. The partner's
// device sends NewLocation messages; the latest one is reported on every
// session tick until the order is delivered or the stream closes.
func (s *Server) StreamDeviceLocation(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}

	feed := tracking.NewDeviceFeed()
	session, err := s.h.Sessions.Start(c.Request().Context(), orderID, actor, feed)
	if err != nil {
		return s.fail(c, err)
	}
	defer session.Stop()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	defer conn.Close()

	log := s.log.With(zap.String("order_id", orderID.String()), zap.String("actor", actor.String()))

	go func() {
		<-session.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "order no longer tracked"),
			time.Now().Add(writeWait))
		_ = conn.Close()
	}()

	for {
		var msg NewLocation
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("device stream closed", zap.Error(err))
			}
			return nil
		}

		observedAt := time.Now()
		if msg.ObservedAt != nil {
			observedAt = *msg.ObservedAt
		}
		report, reportErr := tracking.NewLocationReport(msg.Lat, msg.Lng, observedAt)
		if reportErr != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteJSON(DeviceError{Error: reportErr.Error()}); err != nil {
				return nil
			}
			continue
		}
		feed.Push(report)
	}
}

// discardReads consumes control frames and cancels once the client leaves.
func discardReads(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
