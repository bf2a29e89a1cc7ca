// Package redis provides Redis connection management for the artifact blob source.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/tips/internal/config"
	"github.com/turtacn/tips/pkg/logger"
)

var _ RedisConnectionManager = (*RedisConnection)(nil)

// RedisConnectionManager abstracts the client lifecycle.
type RedisConnectionManager interface {
	GetClient() redis.UniversalClient
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) (map[string]interface{}, error)
	Close() error
}

// RedisConnection manages Redis client lifecycle and health monitoring.
type RedisConnection struct {
	config config.RedisConfig
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection creates a new Redis connection manager instance.
func NewRedisConnection(cfg config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		config: cfg,
		logger: log.WithComponent("redis"),
	}
}

// Connect establishes the connection and validates it with a ping.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	if rc.client != nil {
		rc.logger.Warn(ctx, "Redis connection already initialized")
		return nil
	}

	rc.setDefaults()
	client := redis.NewClient(&redis.Options{
		Addr:         rc.config.Address,
		Password:     rc.config.Password,
		DB:           rc.config.DB,
		PoolSize:     rc.config.PoolSize,
		DialTimeout:  rc.config.DialTimeout,
		ReadTimeout:  rc.config.ReadTimeout,
		WriteTimeout: rc.config.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		rc.logger.Error(ctx, "Redis ping failed", err, logger.String("addr", rc.config.Address))
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	rc.client = client
	rc.logger.Info(ctx, "Redis connection established successfully",
		logger.String("addr", rc.config.Address),
		logger.Int("db", rc.config.DB),
		logger.Int("pool_size", rc.config.PoolSize),
	)
	return nil
}

func (rc *RedisConnection) setDefaults() {
	if rc.config.PoolSize == 0 {
		rc.config.PoolSize = 10
	}
	if rc.config.DialTimeout == 0 {
		rc.config.DialTimeout = 5 * time.Second
	}
	if rc.config.ReadTimeout == 0 {
		rc.config.ReadTimeout = 3 * time.Second
	}
	if rc.config.WriteTimeout == 0 {
		rc.config.WriteTimeout = 3 * time.Second
	}
}

// GetClient returns the underlying client, nil before Connect.
func (rc *RedisConnection) GetClient() redis.UniversalClient {
	return rc.client
}

// Ping checks connectivity.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if rc.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return rc.client.Ping(ctx).Err()
}

// HealthCheck reports latency and pool statistics.
func (rc *RedisConnection) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	start := time.Now()
	if err := rc.Ping(ctx); err != nil {
		return map[string]interface{}{"status": "unhealthy", "error": err.Error()}, err
	}
	health := map[string]interface{}{
		"status":     "healthy",
		"latency_ms": time.Since(start).Milliseconds(),
	}
	if c, ok := rc.client.(*redis.Client); ok {
		stats := c.PoolStats()
		health["total_conns"] = stats.TotalConns
		health["idle_conns"] = stats.IdleConns
	}
	return health, nil
}

// Close releases the client.
func (rc *RedisConnection) Close() error {
	if rc.client == nil {
		return nil
	}
	err := rc.client.Close()
	rc.client = nil
	if err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}
	rc.logger.Info(context.Background(), "Redis connection closed")
	return nil
}

//Personal.AI order the ending
