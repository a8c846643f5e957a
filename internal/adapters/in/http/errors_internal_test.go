package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	orderID, partnerID := kernel.NewUUID(), kernel.NewUUID()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"request error", &requestError{status: http.StatusBadRequest, code: "invalid_request", err: errors.New("bad id")},
			http.StatusBadRequest, "invalid_request"},
		{"already claimed", errs.NewAlreadyClaimedError(orderID), http.StatusConflict, "already_claimed"},
		{"wrapped already claimed", fmt.Errorf("claim: %w", errs.NewAlreadyClaimedError(orderID)),
			http.StatusConflict, "already_claimed"},
		{"not found", errs.NewObjectNotFoundError("order", orderID), http.StatusNotFound, "not_found"},
		{"invalid transition", errs.NewInvalidTransitionError(order.Delivered, order.Pending),
			http.StatusConflict, "invalid_transition"},
		{"invalid state", errs.NewInvalidStateError(orderID, order.Cancelled), http.StatusConflict, "invalid_state"},
		{"not authorized", errs.NewNotAuthorizedError(partnerID, orderID, "view order"),
			http.StatusForbidden, "not_authorized"},
		{"not owner", errs.NewNotOwnerError(partnerID, orderID), http.StatusForbidden, "not_owner"},
		{"partner offline", errs.NewPartnerOfflineError(partnerID), http.StatusPreconditionFailed, "partner_offline"},
		{"already rated", order.ErrAlreadyRated, http.StatusConflict, "already_rated"},
		{"invalid value", errs.NewValueIsInvalidError("rating"), http.StatusBadRequest, "invalid_request"},
		{"out of range", errs.NewValueIsOutOfRangeError("lat", 95, -90, 90), http.StatusBadRequest, "invalid_request"},
		{"required", errs.NewValueIsRequiredError("status"), http.StatusBadRequest, "invalid_request"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.status, got.status)
			assert.Equal(t, tt.code, got.code)
		})
	}
}
