// Package config provides engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds engine configuration values loaded from file or environment variables.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"`

	// Remote content store connection.
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	// OfflineMode runs the engine against the in-memory store, with
	// moderation disabled. No DB or Redis connection is attempted.
	OfflineMode bool `mapstructure:"OFFLINE_MODE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	// Session identity issued by the backend's auth service.
	SessionToken  string `mapstructure:"SESSION_TOKEN"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Moderation adapter. Empty URL disables moderation (fail-open for all).
	ModerationURL       string `mapstructure:"MODERATION_URL"`
	ModerationAPIKey    string `mapstructure:"MODERATION_API_KEY"`
	ModerationModel     string `mapstructure:"MODERATION_MODEL"`
	ModerationTimeoutMS int    `mapstructure:"MODERATION_TIMEOUT_MS"`

	// Image object storage.
	MediaDir         string `mapstructure:"MEDIA_DIR"`
	MediaBaseURL     string `mapstructure:"MEDIA_BASE_URL"`
	MediaMaxUploadMB int    `mapstructure:"MEDIA_MAX_UPLOAD_MB"`

	// Tracing.
	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig loads engine configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars alone are enough.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "8471")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "ecocircle")
	viper.SetDefault("DB_PASSWORD", "ecocircle")
	viper.SetDefault("DB_NAME", "ecocircle")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("OFFLINE_MODE", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SESSION_TOKEN", "")
	viper.SetDefault("SESSION_SECRET", "dev-session-secret-change-me")
	viper.SetDefault("MODERATION_URL", "")
	viper.SetDefault("MODERATION_API_KEY", "")
	viper.SetDefault("MODERATION_MODEL", "gemini-2.0-flash")
	viper.SetDefault("MODERATION_TIMEOUT_MS", 8000)
	viper.SetDefault("MEDIA_DIR", "/tmp/ecocircle/media")
	viper.SetDefault("MEDIA_BASE_URL", "http://localhost:8471/media")
	viper.SetDefault("MEDIA_MAX_UPLOAD_MB", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.SessionSecret == "dev-session-secret-change-me" {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if c.OfflineMode {
			return errors.New("OFFLINE_MODE cannot be enabled in production")
		}
		if c.ModerationURL == "" {
			log.Println("WARNING: MODERATION_URL is empty in production; all posts will pass unmoderated.")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	}

	return nil
}
