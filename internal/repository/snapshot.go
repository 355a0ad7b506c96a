package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "maedn/internal/domain/game"
)

const snapshotKeyPrefix = "maedn:snapshot:"

// SnapshotRedisStorage keeps the latest snapshot of a match and publishes
// every new one on a channel for out-of-process watchers.
type SnapshotRedisStorage struct {
	client  *redis.Client
	channel string
	log     *zap.SugaredLogger
}

func NewSnapshotRedisStorage(client *redis.Client, channel string, log *zap.SugaredLogger) *SnapshotRedisStorage {
	return &SnapshotRedisStorage{
		client:  client,
		channel: channel,
		log:     log,
	}
}

func (s *SnapshotRedisStorage) Publish(ctx context.Context, matchID string, snapshot domain.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, snapshotKeyPrefix+matchID, payload, 0)
	pipe.Publish(ctx, s.channel, payload)
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish snapshot of %s: %w", matchID, err)
	}
	return nil
}
