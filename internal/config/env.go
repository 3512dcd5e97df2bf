// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Core (Required)
	EnvLineChannelAccessToken = "LINE_CHANNEL_ACCESS_TOKEN"

	// Notify endpoint authentication. Every variable named exactly this,
	// or starting with this followed by an underscore, is a valid token.
	EnvAuthorizationTokenPrefix = "AUTHORIZATION_TOKEN"

	// Send mode: broadcast | group | all (default broadcast)
	EnvSendMode = "SEND_MODE"

	// Server
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	// Group registry
	EnvRegistryBackend = "REGISTRY_BACKEND" // sqlite | dynamodb | postgres
	EnvDataDir         = "DATA_DIR"
	EnvTableName       = "TABLE_NAME"
	EnvDynamoRegion    = "DYNAMO_REGION"
	EnvDatabaseURL     = "DATABASE_URL"

	// Image storage
	EnvBucketName  = "BUCKET_NAME"
	EnvS3Region    = "S3_REGION"
	EnvS3Endpoint  = "S3_ENDPOINT" // optional, set for R2-compatible storage
	EnvS3AccessKey = "S3_ACCESS_KEY_ID"
	EnvS3SecretKey = "S3_SECRET_ACCESS_KEY"

	// Sentry Feature
	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "SENTRY_SAMPLE_RATE"

	// Metrics Auth Feature
	EnvMetricsUsername = "METRICS_USERNAME"
	EnvMetricsPassword = "METRICS_PASSWORD"
)
