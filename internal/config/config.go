// Package config loads service configuration from the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the fully resolved service configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogLevel    string
	ServiceName string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// RedisConfig is optional; an empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// RabbitMQConfig is optional; an empty URL logs events instead of publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type UploadConfig struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

type RateLimitConfig struct {
	InquiryMax    int
	InquiryWindow time.Duration
}

type CORSConfig struct {
	AllowOrigins string
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "saas-marketplace")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:marketplace.db?cache=shared")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 2*time.Minute)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "marketplace")

	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_BASE_URL", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)

	v.SetDefault("INQUIRY_RATE_LIMIT", 10)
	v.SetDefault("INQUIRY_RATE_WINDOW", time.Minute)

	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
}

// Load reads configuration into a new Config. A .env file in the working
// directory is applied first when present; configFile, if set, is merged
// before environment variables, which always win.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Environment: v.GetString("APP_ENV"),
			LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
			ServiceName: v.GetString("SERVICE_NAME"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Upload: UploadConfig{
			Dir:      v.GetString("UPLOAD_DIR"),
			BaseURL:  v.GetString("UPLOAD_BASE_URL"),
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		RateLimit: RateLimitConfig{
			InquiryMax:    v.GetInt("INQUIRY_RATE_LIMIT"),
			InquiryWindow: v.GetDuration("INQUIRY_RATE_WINDOW"),
		},
		CORS: CORSConfig{
			AllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		problems = append(problems, "DATABASE_DSN is required")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.Upload.MaxBytes <= 0 {
		problems = append(problems, "UPLOAD_MAX_BYTES must be positive")
	}
	if c.RateLimit.InquiryMax <= 0 || c.RateLimit.InquiryWindow <= 0 {
		problems = append(problems, "INQUIRY_RATE_LIMIT and INQUIRY_RATE_WINDOW must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
