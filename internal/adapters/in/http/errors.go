package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error is the body of every failed request.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// requestError is a failure found before any use case ran.
type requestError struct {
	status int
	code   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

type classified struct {
	status int
	code   string
}

func classify(err error) classified {
	var (
		request        *requestError
		alreadyClaimed *errs.AlreadyClaimedError
	)
	switch {
	case errors.As(err, &request):
		return classified{request.status, request.code}
	case errors.As(err, &alreadyClaimed):
		return classified{http.StatusConflict, "already_claimed"}
	case errors.Is(err, errs.ErrObjectNotFound):
		return classified{http.StatusNotFound, "not_found"}
	case errors.Is(err, errs.ErrInvalidTransition):
		return classified{http.StatusConflict, "invalid_transition"}
	case errors.Is(err, errs.ErrInvalidState):
		return classified{http.StatusConflict, "invalid_state"}
	case errors.Is(err, errs.ErrNotAuthorized):
		return classified{http.StatusForbidden, "not_authorized"}
	case errors.Is(err, errs.ErrNotOwner):
		return classified{http.StatusForbidden, "not_owner"}
	case errors.Is(err, errs.ErrPartnerOffline):
		return classified{http.StatusPreconditionFailed, "partner_offline"}
	case errors.Is(err, order.ErrAlreadyRated):
		return classified{http.StatusConflict, "already_rated"}
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return classified{http.StatusBadRequest, "invalid_request"}
	}
	return classified{http.StatusInternalServerError, ""}
}

// fail writes the response for an error returned by a use case.
func (s *Server) fail(c echo.Context, err error) error {
	cl := classify(err)

	switch {
	case cl.status >= http.StatusInternalServerError:
		s.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(cl.status, Error{Status: cl.status, Message: "internal error"})
	case cl.status == http.StatusForbidden:
		fields := []zap.Field{zap.String("path", c.Path()), zap.Error(err)}
		if actor, actorErr := ActorFrom(c); actorErr == nil {
			fields = append(fields, zap.String("actor", actor.String()))
		}
		s.log.Warn("authorization failure", fields...)
	}

	return c.JSON(cl.status, Error{Status: cl.status, Code: cl.code, Message: err.Error()})
}

// badRequest answers malformed input that never reached a use case.
func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, Error{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: err.Error(),
	})
}
