// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the group registry backend, and image storage.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Registry backend names accepted in REGISTRY_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// LINE Bot Configuration
	LineChannelToken string

	// Notify endpoint authentication
	AuthTokenPrefix string // env key prefix scanned for valid bearer tokens

	// Send mode literal; resolved per request by relay.ParseSendMode
	SendMode string

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Group registry
	RegistryBackend string
	DataDir         string // SQLite backend: database directory
	TableName       string // DynamoDB backend: table name
	DynamoRegion    string // DynamoDB backend: AWS region
	DatabaseURL     string // Postgres backend: connection string

	// Image storage
	BucketName  string
	S3Region    string
	S3Endpoint  string // empty for AWS S3, set for R2-compatible endpoints
	S3AccessKey string
	S3SecretKey string

	// Sentry error tracking (optional)
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Metrics endpoint Basic Auth (empty password = no auth)
	MetricsUsername string
	MetricsPassword string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		LineChannelToken: getEnv(EnvLineChannelAccessToken, ""),
		AuthTokenPrefix:  EnvAuthorizationTokenPrefix,
		SendMode:         getEnv(EnvSendMode, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		RegistryBackend: getEnv(EnvRegistryBackend, BackendSQLite),
		DataDir:         getEnv(EnvDataDir, "./data"),
		TableName:       getEnv(EnvTableName, ""),
		DynamoRegion:    getEnv(EnvDynamoRegion, ""),
		DatabaseURL:     getEnv(EnvDatabaseURL, ""),

		BucketName:  getEnv(EnvBucketName, ""),
		S3Region:    getEnv(EnvS3Region, ""),
		S3Endpoint:  getEnv(EnvS3Endpoint, ""),
		S3AccessKey: getEnv(EnvS3AccessKey, ""),
		S3SecretKey: getEnv(EnvS3SecretKey, ""),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.LineChannelToken == "" {
		errs = append(errs, errors.New(EnvLineChannelAccessToken+" is required"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}

	switch c.RegistryBackend {
	case BackendSQLite:
		if c.DataDir == "" {
			errs = append(errs, errors.New(EnvDataDir+" is required for the sqlite backend"))
		}
	case BackendDynamoDB:
		if c.TableName == "" || c.DynamoRegion == "" {
			errs = append(errs, errors.New(EnvTableName+" and "+EnvDynamoRegion+" are required for the dynamodb backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New(EnvDatabaseURL+" is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown registry backend %q", c.RegistryBackend))
	}

	// Image uploads are optional; when a bucket is configured the region
	// (or an explicit endpoint) must come with it.
	if c.BucketName != "" && c.S3Region == "" && c.S3Endpoint == "" {
		errs = append(errs, errors.New(EnvS3Region+" or "+EnvS3Endpoint+" is required when "+EnvBucketName+" is set"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasImageStorage returns true if an object storage bucket is configured.
func (c *Config) HasImageStorage() bool {
	return c.BucketName != ""
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "groups.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
