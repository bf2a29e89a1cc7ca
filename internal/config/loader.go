package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/turtacn/tips/pkg/constants"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. TIPS_ARTIFACTS_DIR overrides artifacts.dir.
const EnvPrefix = "TIPS"

// LoadConfig loads the configuration from file and environment variables.
// An empty path searches /etc/tips/ and the working directory for config.yaml;
// a missing file is not an error, a malformed one is.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/tips/")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Load from environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.port", 9090)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("artifacts.source", string(constants.ArtifactSourceFile))
	v.SetDefault("artifacts.dir", constants.DefaultArtifactDir)
	v.SetDefault("artifacts.transform_name", constants.DefaultTransformFile)
	v.SetDefault("artifacts.model_name", constants.DefaultModelFile)
	v.SetDefault("artifacts.redis_key_prefix", constants.DefaultRedisKeyPrefix)
	v.SetDefault("artifacts.transform_sha256", "")
	v.SetDefault("artifacts.model_sha256", "")
	v.SetDefault("artifacts.watch", false)
	v.SetDefault("artifacts.watch_debounce", constants.DefaultWatchDebounce)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", constants.DefaultScoreCacheTTL)
	v.SetDefault("cache.cleanup_interval", constants.DefaultScoreCacheCleanup)

	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.pprof_enabled", false)
	v.SetDefault("monitoring.namespace", constants.MetricsNamespace)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)
}

//Personal.AI order the ending
