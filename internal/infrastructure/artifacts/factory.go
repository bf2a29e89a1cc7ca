package artifacts

import (
	"context"
	"fmt"

	"github.com/turtacn/tips/internal/config"
	"github.com/turtacn/tips/internal/infrastructure/persistence/redis"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/logger"
)

// OpenSource builds the Source selected by cfg. For the Redis source it also
// returns the open connection, which the caller must close.
func OpenSource(ctx context.Context, cfg *config.Config, log logger.Logger) (Source, *redis.RedisConnection, error) {
	switch constants.ArtifactSourceType(cfg.Artifacts.Source) {
	case constants.ArtifactSourceFile:
		return NewFileSource(cfg.Artifacts.Dir), nil, nil
	case constants.ArtifactSourceRedis:
		conn := redis.NewRedisConnection(cfg.Redis, log)
		if err := conn.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return NewRedisSource(conn.GetClient(), cfg.Artifacts.RedisKeyPrefix), conn, nil
	default:
		return nil, nil, fmt.Errorf("unknown artifact source %q", cfg.Artifacts.Source)
	}
}
