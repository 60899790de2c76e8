// internal/artifacts/redis.go
package artifacts

import (
	"context"
	"errors"
	"fmt"

	"credit-risk-workers/internal/common/database"

	"github.com/redis/go-redis/v9"
)

// RedisStore reads artifacts stored as string values under <prefix><name>.
type RedisStore struct {
	client *database.RedisClient
	prefix string
}

func NewRedisStore(client *database.RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	key := s.prefix + name
	data, err := s.client.GetBytes(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("key %s: %w", key, ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", key, err)
	}
	return data, nil
}

// Put stores payload without expiry.
func (s *RedisStore) Put(ctx context.Context, name string, payload []byte) error {
	if err := s.client.Set(ctx, s.prefix+name, payload, 0); err != nil {
		return fmt.Errorf("set artifact %s%s: %w", s.prefix, name, err)
	}
	return nil
}

func (s *RedisStore) Describe() string {
	return "redis:" + s.prefix
}
