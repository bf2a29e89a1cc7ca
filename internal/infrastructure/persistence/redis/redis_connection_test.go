package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/tips/internal/config"
	"github.com/turtacn/tips/internal/infrastructure/persistence/redis"
	"github.com/turtacn/tips/pkg/logger"
)

func TestRedisConnection_ConnectAndHealth(t *testing.T) {
	s := miniredis.RunT(t)

	conn := redis.NewRedisConnection(config.RedisConfig{Address: s.Addr()}, logger.NewNoopLogger())
	require.NoError(t, conn.Connect(context.Background()))
	defer conn.Close()

	require.NotNil(t, conn.GetClient())
	health, err := conn.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])
}

func TestRedisConnection_ConnectFails(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	addr := s.Addr()
	s.Close()

	conn := redis.NewRedisConnection(config.RedisConfig{Address: addr}, logger.NewNoopLogger())
	assert.Error(t, conn.Connect(context.Background()))
	assert.Nil(t, conn.GetClient())
	assert.Error(t, conn.Ping(context.Background()))
	assert.NoError(t, conn.Close())
}
