package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// ListOffers handles GET /offers - pending orders, oldest first, for an
// online partner.
func (s *Server) ListOffers(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	query, err := queries.NewListOffersQuery(actor)
	if err != nil {
		return badRequest(c, err)
	}
	views, err := s.h.ListOffers.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toTrackingViews(views))
}

// SetAvailability handles PUT /partners/me/availability.
func (s *Server) SetAvailability(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return unauthorized(c, err)
	}

	var body Availability
	if err = c.Bind(&body); err != nil {
		return badRequest(c, err)
	}
	cmd, err := commands.NewSetPartnerAvailabilityCommand(actor, body.Online)
	if err != nil {
		return badRequest(c, err)
	}
	if err = s.h.SetAvailability.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, body)
}

// StartSimulation handles POST /orders/:id/simulation - plays the campus
// route for the partner's order in place of a real device.
func (s *Server) StartSimulation(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}
	if _, err = s.h.Sessions.StartSimulation(c.Request().Context(), orderID, actor); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusAccepted)
}

// StopSimulation handles DELETE /orders/:id/simulation.
func (s *Server) StopSimulation(c echo.Context) error {
	actor, orderID, err := s.actorAndOrder(c)
	if err != nil {
		return s.fail(c, err)
	}
	s.h.Sessions.Stop(orderID, actor)
	return c.NoContent(http.StatusNoContent)
}
