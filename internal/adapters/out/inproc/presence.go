package inproc

import (
	"context"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// Presence keeps partner availability in memory. Unknown partners are offline.
type Presence struct {
	mu     sync.RWMutex
	online map[kernel.UUID]bool
}

var _ ports.PartnerPresence = (*Presence)(nil)

func NewPresence() *Presence {
	return &Presence{online: make(map[kernel.UUID]bool)}
}

func (p *Presence) SetOnline(_ context.Context, partnerID kernel.UUID, online bool) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if online {
		p.online[partnerID] = true
	} else {
		delete(p.online, partnerID)
	}
	return nil
}

func (p *Presence) IsOnline(_ context.Context, partnerID kernel.UUID) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online[partnerID], nil
}
