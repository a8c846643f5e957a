package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/tracking"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /orders - the actor places an order as customer.
func (s *Server) CreateOrder(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	var body NewOrder
	if err = c.Bind(&body); err != nil {
		return badRequest(c, err)
	}
	subtotal, err := kernel.MoneyFromString(body.Subtotal)
	if err != nil {
		return badRequest(c, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, actor, body.PickupCode, body.ZoneCode, body.Details, subtotal)
	if err != nil {
		return badRequest(c, err)
	}

	ctx := c.Request().Context()
	if err = s.h.CreateOrder.Handle(ctx, cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondWithOrder(c, http.StatusCreated, orderID, actor)
}

// ListOrders handles GET /orders?role=customer|partner&status=a,b&limit=n.
func (s *Server) ListOrders(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	role := queries.OrderRole(c.QueryParam("role"))
	if role == "" {
		role = queries.AsCustomer
	}

	var statuses []order.Status
	if raw := c.QueryParam("status"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			status, parseErr := order.ParseStatus(strings.TrimSpace(name))
			if parseErr != nil {
				return badRequest(c, parseErr)
			}
			statuses = append(statuses, status)
		}
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return badRequest(c, err)
		}
	}

	query, err := queries.NewListOrdersQuery(actor, role, statuses, limit)
	if err != nil {
		return badRequest(c, err)
	}
	views, err := s.h.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toTrackingViews(views))
}

// GetOrder handles GET /orders/:id - snapshot, ETA and staleness.
func (s *Server) GetOrder(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// ClaimOrder handles POST /orders/:id/claim. Losing a race answers 409
// with code already_claimed.
func (s *Server) ClaimOrder(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, actor)
	if err != nil {
		return badRequest(c, err)
	}
	if err = s.h.ClaimOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// TransitionOrder handles POST /orders/:id/transitions.
func (s *Server) TransitionOrder(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NewTransition
	if err = c.Bind(&body); err != nil {
		return badRequest(c, err)
	}
	target, err := order.ParseStatus(body.Status)
	if err != nil {
		return badRequest(c, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, actor)
	if err != nil {
		return badRequest(c, err)
	}
	if err = s.h.TransitionOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// ReportLocation handles POST /orders/:id/location from a partner device.
func (s *Server) ReportLocation(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NewLocation
	if err = c.Bind(&body); err != nil {
		return badRequest(c, err)
	}
	observedAt := time.Now()
	if body.ObservedAt != nil {
		observedAt = *body.ObservedAt
	}
	report, err := tracking.NewLocationReport(body.Lat, body.Lng, observedAt)
	if err != nil {
		return badRequest(c, err)
	}

	cmd, err := commands.NewReportLocationCommand(orderID, actor, report)
	if err != nil {
		return badRequest(c, err)
	}
	if err = s.h.ReportLocation.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RateDelivery handles POST /orders/:id/rating by the customer.
func (s *Server) RateDelivery(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body NewRating
	if err = c.Bind(&body); err != nil {
		return badRequest(c, err)
	}
	cmd, err := commands.NewRateDeliveryCommand(orderID, actor, body.Rating, body.Feedback)
	if err != nil {
		return badRequest(c, err)
	}
	if err = s.h.RateDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondWithOrder(c, http.StatusOK, orderID, actor)
}

// actorAndOrder resolves the actor and the :id parameter.
func (s *Server) actorAndOrder(c echo.Context) (kernel.UUID, kernel.UUID, error) {
	actor, err := ActorFrom(c)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, &requestError{status: http.StatusUnauthorized, code: "unauthenticated", err: err}
	}
	orderID, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, &requestError{status: http.StatusBadRequest, code: "invalid_request", err: err}
	}
	return actor, orderID, nil
}

func (s *Server) respondWithOrder(c echo.Context, status int, orderID, actor kernel.UUID) error {
	query, err := queries.NewGetOrderTrackingQuery(orderID, actor)
	if err != nil {
		return badRequest(c, err)
	}
	view, err := s.h.GetTracking.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(status, toTrackingView(view))
}
