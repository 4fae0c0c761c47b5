package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds application level configuration.
// Values come from an optional YAML file and are overridden by environment variables.
type Config struct {
	ServerPort  string `yaml:"server_port" validate:"required,numeric"`
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	SwaggerHost string `yaml:"swagger_host"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	RateLimit   int    `yaml:"rate_limit" validate:"gte=0"`

	DBDriver    string `yaml:"db_driver" validate:"oneof=mysql postgres sqlite"`
	DatabaseDSN string `yaml:"database_dsn" validate:"required"`

	RedisAddr       string        `yaml:"redis_addr"`
	RedisDB         int           `yaml:"redis_db" validate:"gte=0"`
	RedisPass       string        `yaml:"redis_password"`
	CatalogCacheTTL time.Duration `yaml:"catalog_cache_ttl"`

	JWTSecret string `yaml:"jwt_secret" validate:"required,min=8"`

	MaxCookingTime int `yaml:"max_cooking_time" validate:"gte=1"`
	PageSize       int `yaml:"page_size" validate:"gte=1"`
	MaxPageSize    int `yaml:"max_page_size" validate:"gtefield=PageSize"`

	StorageDriver string `yaml:"storage_driver" validate:"oneof=local s3"`
	MediaRoot     string `yaml:"media_root" validate:"required_if=StorageDriver local"`
	MediaURL      string `yaml:"media_url" validate:"required,startswith=/"`
	S3Endpoint    string `yaml:"s3_endpoint" validate:"required_if=StorageDriver s3"`
	S3AccessKey   string `yaml:"s3_access_key"`
	S3SecretKey   string `yaml:"s3_secret_key"`
	S3Bucket      string `yaml:"s3_bucket" validate:"required_if=StorageDriver s3"`
	S3UseSSL      bool   `yaml:"s3_use_ssl"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	SMTPSender   string `yaml:"smtp_sender"`
}

func defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		BaseURL:         "http://localhost:8080",
		LogLevel:        "info",
		DBDriver:        "mysql",
		DatabaseDSN:     "user:password@tcp(localhost:3306)/foodgram?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:       "localhost:6379",
		CatalogCacheTTL: 10 * time.Minute,
		JWTSecret:       "change-me-please",
		MaxCookingTime:  32000,
		PageSize:        6,
		MaxPageSize:     100,
		StorageDriver:   "local",
		MediaRoot:       "./media",
		MediaURL:        "/media",
		SMTPPort:        587,
	}
}

// Load builds Config from .env, the optional CONFIG_FILE and the environment.
func Load() (*Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.RateLimit = getEnvInt("RATE_LIMIT", cfg.RateLimit)

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.CatalogCacheTTL = getEnvDuration("CATALOG_CACHE_TTL", cfg.CatalogCacheTTL)

	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	cfg.MaxCookingTime = getEnvInt("MAX_COOKING_TIME", cfg.MaxCookingTime)
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
	cfg.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", cfg.MaxPageSize)

	cfg.StorageDriver = getEnv("STORAGE_DRIVER", cfg.StorageDriver)
	cfg.MediaRoot = getEnv("MEDIA_ROOT", cfg.MediaRoot)
	cfg.MediaURL = getEnv("MEDIA_URL", cfg.MediaURL)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKey = getEnv("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnv("S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3UseSSL = getEnvBool("S3_USE_SSL", cfg.S3UseSSL)

	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUser = getEnv("SMTP_USER", cfg.SMTPUser)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPSender = getEnv("SMTP_SENDER", cfg.SMTPSender)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
