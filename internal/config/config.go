package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config chứa toàn bộ application configuration.
// Populated from environment variables (optionally loaded from .env by the entrypoints).
type Config struct {
	App     AppConfig
	Blog    BlogConfig
	Storage StorageConfig
	Redis   RedisConfig
	JWT     JWTConfig
	MinIO   MinIOConfig
	Job     JobConfig
	Admin   AdminConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

// BlogConfig holds the listing settings shared by every paginated route.
type BlogConfig struct {
	PostsPerPage int
}

// StorageConfig selects the repository backend.
// "postgres" (default) or "memory" for local demos without a database.
type StorageConfig struct {
	Driver string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// =====================================================
// MINIO CONFIGURATION
// =====================================================

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string // blog-media
	UseSSL    bool   // false for local
}

// AdminConfig - bootstrap admin account (tạo khi khởi động nếu chưa tồn tại)
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// JobConfig - background jobs (asynq worker + scheduler)
type JobConfig struct {
	Concurrency         int
	ReconcileCron       string // cron spec của thumbnail reconcile job
	ReconcileBatchLimit int
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	defaultJWTSecret = "your-secret-key-change-in-production"
)

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Blog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Blog: BlogConfig{
			PostsPerPage: getEnvInt("POSTS_PER_PAGE", 10),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: time.Duration(getEnvInt("JWT_ACCESS_EXPIRY", 24*60)) * time.Minute,
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", false),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "blog-media"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Job: JobConfig{
			Concurrency:         getEnvInt("WORKER_CONCURRENCY", 10),
			ReconcileCron:       getEnv("THUMBNAIL_RECONCILE_CRON", "*/30 * * * *"),
			ReconcileBatchLimit: getEnvInt("THUMBNAIL_RECONCILE_LIMIT", 100),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", ""),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Blog.PostsPerPage < 1 {
		return fmt.Errorf("POSTS_PER_PAGE must be positive (got %d)", c.Blog.PostsPerPage)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	// Production environment phải có JWT secret
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Storage.Driver == StorageDriverMemory {
			return fmt.Errorf("STORAGE_DRIVER=memory is not allowed in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
