// Package config loads service settings from the environment. A .env file
// in the working directory is loaded first when present.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string `koanf:"port" validate:"required"`
	StoreDriver string `koanf:"store_driver" validate:"oneof=mongo postgres memory"`
	MongoURI    string `koanf:"mongo_uri" validate:"required_if=StoreDriver mongo"`
	MongoDB     string `koanf:"mongo_db" validate:"required"`
	PostgresDSN string `koanf:"postgres_dsn" validate:"required_if=StoreDriver postgres"`

	RedisAddr          string `koanf:"redis_addr"`
	RedisPassword      string `koanf:"redis_password"`
	RateLimitPerMinute int    `koanf:"rate_limit_per_minute" validate:"min=0"`

	MinioEndpoint  string `koanf:"minio_endpoint"`
	MinioAccessKey string `koanf:"minio_access_key"`
	MinioSecretKey string `koanf:"minio_secret_key"`
	MinioBucket    string `koanf:"minio_bucket" validate:"required_with=MinioEndpoint"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	MaxBodyBytes       int64    `koanf:"max_body_bytes" validate:"min=0"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format" validate:"oneof=console json"`
}

func defaults() *Config {
	return &Config{
		Port:         "3000",
		StoreDriver:  DriverMongo,
		MongoDB:      "exercise_tracker",
		MaxBodyBytes: 1 << 20,
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

var keys = map[string]bool{
	"port": true, "store_driver": true, "mongo_uri": true, "mongo_db": true, "postgres_dsn": true,
	"redis_addr": true, "redis_password": true, "rate_limit_per_minute": true,
	"minio_endpoint": true, "minio_access_key": true, "minio_secret_key": true,
	"minio_bucket": true, "minio_use_ssl": true,
	"cors_allowed_origins": true, "max_body_bytes": true,
	"log_level": true, "log_format": true,
}

// Load reads the environment, applies defaults and validates the result.
// Empty variables count as unset.
// A missing connection string for the selected store driver is an error.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue("", ".", func(name, value string) (string, any) {
		key := strings.ToLower(name)
		if !keys[key] || value == "" {
			return "", nil
		}
		if key == "cors_allowed_origins" {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// splitList splits a comma-separated list and drops empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// MinioEnabled reports whether the landing page should be read from object storage.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != ""
}
