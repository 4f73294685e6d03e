package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep local development working without a config file.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.status_ttl_seconds", 86400)
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.presign_ttl_hours", 1)
	v.SetDefault("worker.worker_count", 2)
	v.SetDefault("worker.queue_size", 100)
	v.SetDefault("worker.stale_job_age_minutes", 30)
	v.SetDefault("worker.stale_check_interval_min", 5)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables may provide everything.
	}

	// Environment variables: GENSTUDIO_SERVER_PORT, GENSTUDIO_DATABASE_URL, etc.
	v.SetEnvPrefix("GENSTUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only reports env-var values for keys it already knows about,
	// so bind the nested keys explicitly.
	for _, key := range []string{
		"server.port", "server.log_level",
		"database.url",
		"redis.addr", "redis.password", "redis.db", "redis.status_ttl_seconds",
		"storage.endpoint", "storage.access_key", "storage.secret_key",
		"storage.bucket", "storage.use_ssl", "storage.presign_ttl_hours",
		"llm.gemini_api_key", "llm.model_name",
		"worker.worker_count", "worker.queue_size",
		"worker.stale_job_age_minutes", "worker.stale_check_interval_min",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
