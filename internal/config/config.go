package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/tips/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Log        LogConfig        `mapstructure:"log"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCConfig controls the optional gRPC listener, which shares the HTTP host.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ArtifactsConfig describes where the fitted transform and model are read from.
type ArtifactsConfig struct {
	Source          string        `mapstructure:"source"`
	Dir             string        `mapstructure:"dir"`
	TransformName   string        `mapstructure:"transform_name"`
	ModelName       string        `mapstructure:"model_name"`
	RedisKeyPrefix  string        `mapstructure:"redis_key_prefix"`
	TransformSHA256 string        `mapstructure:"transform_sha256"`
	ModelSHA256     string        `mapstructure:"model_sha256"`
	Watch           bool          `mapstructure:"watch"`
	WatchDebounce   time.Duration `mapstructure:"watch_debounce"`
}

type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig controls the in-process score cache.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type MonitoringConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	PprofEnabled   bool   `mapstructure:"pprof_enabled"`
	Namespace      string `mapstructure:"namespace"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	Environment    string  `mapstructure:"environment"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.GRPC.Enabled {
		if c.GRPC.Port <= 0 || c.GRPC.Port > 65535 {
			return fmt.Errorf("grpc.port must be in 1..65535, got %d", c.GRPC.Port)
		}
		if c.GRPC.Port == c.Server.Port {
			return fmt.Errorf("grpc.port and server.port must differ")
		}
	}

	switch constants.ArtifactSourceType(c.Artifacts.Source) {
	case constants.ArtifactSourceFile:
		if strings.TrimSpace(c.Artifacts.Dir) == "" {
			return fmt.Errorf("artifacts.dir is required for the file source")
		}
	case constants.ArtifactSourceRedis:
		if strings.TrimSpace(c.Redis.Address) == "" {
			return fmt.Errorf("redis.address is required for the redis artifact source")
		}
		if c.Artifacts.Watch {
			return fmt.Errorf("artifacts.watch is only supported for the file source")
		}
	default:
		return fmt.Errorf("artifacts.source must be %q or %q, got %q",
			constants.ArtifactSourceFile, constants.ArtifactSourceRedis, c.Artifacts.Source)
	}

	if strings.TrimSpace(c.Artifacts.TransformName) == "" || strings.TrimSpace(c.Artifacts.ModelName) == "" {
		return fmt.Errorf("artifacts.transform_name and artifacts.model_name are required")
	}
	if c.Artifacts.TransformName == c.Artifacts.ModelName {
		return fmt.Errorf("artifacts.transform_name and artifacts.model_name must differ")
	}
	for name, sum := range map[string]string{
		"artifacts.transform_sha256": c.Artifacts.TransformSHA256,
		"artifacts.model_sha256":     c.Artifacts.ModelSHA256,
	} {
		if sum != "" && len(sum) != 64 {
			return fmt.Errorf("%s must be a hex-encoded SHA-256 digest", name)
		}
	}

	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when the cache is enabled")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing.sampling_rate must be in [0, 1], got %v", c.Tracing.SamplingRate)
	}
	return nil
}

//Personal.AI order the ending
