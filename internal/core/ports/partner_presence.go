package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// PartnerPresence tracks which delivery partners are online and eligible
// for offers.
type PartnerPresence interface {
	SetOnline(ctx context.Context, partnerID kernel.UUID, online bool) error
	IsOnline(ctx context.Context, partnerID kernel.UUID) (bool, error)
}
