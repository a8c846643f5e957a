// Package redis carries snapshots between processes over Redis Pub/Sub
// and keeps partner presence in Redis hashes.
package redis

import (
	"context"
	"fmt"
	"sync"

	"dispatch/internal/adapters/out/codec"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const channelPrefix = "orders:"

// SnapshotBus publishes each snapshot on a per-order channel. Delivery is
// at-most-once; subscribers rely on the broadcaster's poll fallback for
// anything missed while disconnected.
type SnapshotBus struct {
	client goredis.UniversalClient
	log    *zap.Logger
}

var _ ports.SnapshotBus = (*SnapshotBus)(nil)

func NewSnapshotBus(client goredis.UniversalClient, log *zap.Logger) *SnapshotBus {
	return &SnapshotBus{
		client: client,
		log:    logger.Component(log, "redis_bus"),
	}
}

// Channel is the Pub/Sub channel of one order.
func Channel(orderID kernel.UUID) string {
	return channelPrefix + orderID.String()
}

func (b *SnapshotBus) Publish(ctx context.Context, snapshot order.Snapshot) error {
	payload, err := codec.MarshalSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err = b.client.Publish(ctx, Channel(snapshot.ID), payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

func (b *SnapshotBus) Subscribe(
	ctx context.Context,
	orderID kernel.UUID,
	handler ports.SnapshotHandler,
) (func(), error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	pubsub := b.client.Subscribe(ctx, Channel(orderID))
	// Wait for the subscription to be confirmed so that no publish made
	// after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", Channel(orderID), err)
	}

	log := b.log.With(zap.String("order_id", orderID.String()))
	messages := pubsub.Channel()
	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				b.dispatch(log, orderID, msg, handler)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := pubsub.Close(); err != nil {
				log.Debug("closing subscription", zap.Error(err))
			}
		})
		<-stopped
	}
	return cancel, nil
}

func (b *SnapshotBus) dispatch(log *zap.Logger, orderID kernel.UUID, msg *goredis.Message, handler ports.SnapshotHandler) {
	snapshot, err := codec.UnmarshalSnapshot([]byte(msg.Payload))
	if err != nil {
		log.Warn("dropping undecodable snapshot", zap.String("channel", msg.Channel), zap.Error(err))
		return
	}
	if !snapshot.ID.IsEqual(orderID) {
		return
	}
	handler(snapshot)
}
