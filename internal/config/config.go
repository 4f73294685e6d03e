package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig contains the job status store settings. StatusTTLSeconds is
// the retention window after which terminal status records expire; zero
// means records never expire.
type RedisConfig struct {
	Addr             string `mapstructure:"addr" validate:"required"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	StatusTTLSeconds int    `mapstructure:"status_ttl_seconds" validate:"gte=0"`
}

// StorageConfig contains the object storage (MinIO/S3) settings.
type StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"          validate:"required"`
	AccessKey       string `mapstructure:"access_key"        validate:"required"`
	SecretKey       string `mapstructure:"secret_key"        validate:"required"`
	Bucket          string `mapstructure:"bucket"            validate:"required"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	PresignTTLHours int    `mapstructure:"presign_ttl_hours" validate:"gte=0"`
}

// LLMConfig contains the podcast generation pipeline settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name"`
}

// WorkerConfig contains the job runner settings.
type WorkerConfig struct {
	WorkerCount           int `mapstructure:"worker_count"             validate:"gte=0"`
	QueueSize             int `mapstructure:"queue_size"               validate:"gte=0"`
	StaleJobAgeMinutes    int `mapstructure:"stale_job_age_minutes"    validate:"gte=0"`
	StaleCheckIntervalMin int `mapstructure:"stale_check_interval_min" validate:"gte=0"`
}
