package artifacts

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads artifacts from Redis string keys <prefix><name>.
// The trainer publishes both blobs with SET; this source never writes.
type RedisSource struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSource creates a RedisSource.
func NewRedisSource(client redis.UniversalClient, prefix string) *RedisSource {
	return &RedisSource{client: client, prefix: prefix}
}

// Key returns the Redis key of the named artifact.
func (s *RedisSource) Key(name string) string {
	return s.prefix + name
}

func (s *RedisSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.Key(name)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: redis key %s", ErrNotFound, s.Key(name))
		}
		return nil, fmt.Errorf("redis GET %s: %w", s.Key(name), err)
	}
	return b, nil
}

func (s *RedisSource) Describe() string { return "redis:" + s.prefix }
