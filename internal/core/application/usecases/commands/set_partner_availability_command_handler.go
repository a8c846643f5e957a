package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// SetPartnerAvailabilityCommandHandler records presence. Going offline
// also stops every location reporting session of the partner; orders it
// holds stay assigned and surface as stale.
type SetPartnerAvailabilityCommandHandler struct {
	presence ports.PartnerPresence
	sessions SessionStopper
}

func NewSetPartnerAvailabilityCommandHandler(
	presence ports.PartnerPresence,
	sessions SessionStopper,
) SetPartnerAvailabilityCommandHandler {
	return SetPartnerAvailabilityCommandHandler{
		presence: presence,
		sessions: sessions,
	}
}

func (h *SetPartnerAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetPartnerAvailabilityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if err := h.presence.SetOnline(ctx, cmd.PartnerID(), cmd.Online()); err != nil {
		return err
	}

	if !cmd.Online() && h.sessions != nil {
		h.sessions.StopPartner(cmd.PartnerID())
	}
	return nil
}
