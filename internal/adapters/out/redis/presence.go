package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	goredis "github.com/go-redis/redis/v8"
)

const (
	partnerPrefix = "partner:"
	onlineField   = "is_online"
	updatedField  = "updated_at"
)

// Presence keeps one hash per partner, shared by every process of the
// deployment. Unknown partners are offline.
type Presence struct {
	client goredis.UniversalClient
	now    func() time.Time
}

var _ ports.PartnerPresence = (*Presence)(nil)

func NewPresence(client goredis.UniversalClient) *Presence {
	return &Presence{client: client, now: time.Now}
}

// PartnerKey is the hash holding the presence of one partner.
func PartnerKey(partnerID kernel.UUID) string {
	return partnerPrefix + partnerID.String()
}

func (p *Presence) SetOnline(ctx context.Context, partnerID kernel.UUID, online bool) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}
	err := p.client.HSet(ctx, PartnerKey(partnerID), map[string]interface{}{
		onlineField:  strconv.FormatBool(online),
		updatedField: p.now().UTC().Format(time.RFC3339Nano),
	}).Err()
	if err != nil {
		return fmt.Errorf("set presence of %s: %w", partnerID, err)
	}
	return nil
}

func (p *Presence) IsOnline(ctx context.Context, partnerID kernel.UUID) (bool, error) {
	value, err := p.client.HGet(ctx, PartnerKey(partnerID), onlineField).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read presence of %s: %w", partnerID, err)
	}
	online, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("presence of %s: %w", partnerID, err)
	}
	return online, nil
}
