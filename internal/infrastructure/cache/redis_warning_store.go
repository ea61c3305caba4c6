package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultWarningKeyPrefix = "warning:ack:"

// RedisWarningStore implements warning.Store using Redis, so acknowledgements
// are shared by every instance of the service
type RedisWarningStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisWarningStore creates a store on an existing client.
// Non-permanent acknowledgements expire after ttl; zero keeps them until consumed.
func NewRedisWarningStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisWarningStore {
	if keyPrefix == "" {
		keyPrefix = defaultWarningKeyPrefix
	}
	return &RedisWarningStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Save records an acknowledgement
func (s *RedisWarningStore) Save(ctx context.Context, ack *warning.Acknowledgement) error {
	key := s.key(ack.TenantID, ack.UserID, ack.Key, ack.Always)
	ttl := s.ttl
	if ack.Always {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, ack.ID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save warning acknowledgement: %w", err)
	}
	return nil
}

// Consume reports whether the user acknowledged key. A single acknowledgement
// is removed atomically with GETDEL so concurrent checks cannot both see it.
func (s *RedisWarningStore) Consume(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.key(tenantID, userID, key, true)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check warning acknowledgement: %w", err)
	}
	if exists > 0 {
		return true, nil
	}

	if err := s.client.GetDel(ctx, s.key(tenantID, userID, key, false)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume warning acknowledgement: %w", err)
	}
	return true, nil
}

// Ping checks that Redis is reachable
func (s *RedisWarningStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisWarningStore) Close() error {
	return s.client.Close()
}

func (s *RedisWarningStore) key(tenantID, userID uuid.UUID, key string, always bool) string {
	scope := "once"
	if always {
		scope = "always"
	}
	return fmt.Sprintf("%s%s:%s:%s:%s", s.keyPrefix, tenantID, userID, scope, key)
}

var _ warning.Store = (*RedisWarningStore)(nil)
