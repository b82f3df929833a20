package seenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/flightwatch/internal/config/seenset"
	"github.com/jonesrussell/flightwatch/internal/dedup"
	"github.com/jonesrussell/flightwatch/internal/logger"
)

// connectionTimeout bounds the connection check at construction.
const connectionTimeout = 5 * time.Second

// RedisStore keeps seen flight identifiers in a Redis set.
type RedisStore struct {
	client *redis.Client
	key    string
	log    logger.Interface
}

// NewRedisStore creates a Redis-backed seen-set store and verifies
// connectivity.
func NewRedisStore(cfg *seenset.RedisConfig, log logger.Interface) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{
		client: client,
		key:    cfg.Key,
		log:    log.WithComponent("seenstore"),
	}, nil
}

// Load reads every member of the seen set.
func (s *RedisStore) Load(ctx context.Context) (dedup.SeenSet, error) {
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, &StoreError{Op: OpLoad, Err: err}
	}

	s.log.Debug("seen set loaded", "backend", "redis", "size", len(ids))
	return dedup.NewSeenSet(ids), nil
}

// Commit adds identifiers to the seen set. SADD is idempotent, so a
// retried commit after a partial failure is safe.
func (s *RedisStore) Commit(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	if err := s.client.SAdd(ctx, s.key, members...).Err(); err != nil {
		return &StoreError{Op: OpCommit, Err: err}
	}

	s.log.Debug("seen set committed", "backend", "redis", "count", len(ids))
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
