package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv     string
	AppVersion string
	Port       string

	// AWS
	AWSRegion string

	// Object storage (S3 or S3-compatible: MinIO, localstack, etc.)
	S3Bucket    string
	S3Endpoint  string // Optional: enables path-style addressing and bucket auto-create
	S3AccessKey string // Optional: falls back to the default credential chain
	S3SecretKey string

	// Metadata store
	MetadataDriver   string // "dynamodb", "sqlite" or "pgx"
	MetadataTable    string
	DynamoDBEndpoint string // Optional: for DynamoDB Local
	DynamoAccessKey  string // Optional: falls back to the default credential chain
	DynamoSecretKey  string
	DBConnection     string // sqlite/pgx only

	// Presigned URL validity window for both uploads and downloads
	PresignExpiry time.Duration

	// HTTP
	UploadRateLimit int   // presign-upload requests per minute per IP, 0 = disabled
	MaxBodyBytes    int64 // JSON request body limit

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppEnv:     envString("APP_ENV", "local"),
		AppVersion: envString("APP_VERSION", "0.0.1-local"),
		Port:       envString("PORT", "8080"),

		// AWS
		AWSRegion: envRequired("AWS_REGION"),

		// Object storage
		S3Bucket:    envRequired("S3_BUCKET"),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),

		// Metadata store
		MetadataDriver:   envString("METADATA_DRIVER", "dynamodb"),
		MetadataTable:    envRequired("METADATA_TABLE"),
		DynamoDBEndpoint: envString("DYNAMODB_ENDPOINT", ""),
		DynamoAccessKey:  envString("DYNAMODB_ACCESS_KEY", ""),
		DynamoSecretKey:  envString("DYNAMODB_SECRET_KEY", ""),
		DBConnection:     envString("DB_CONNECTION", "./data/filedrop.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"),

		PresignExpiry: envRequiredSeconds("PRESIGN_EXPIRES_SECONDS"),

		// HTTP
		UploadRateLimit: envInt("UPLOAD_RATE_LIMIT", 0),
		MaxBodyBytes:    int64(envInt("MAX_BODY_BYTES", 1<<20)), // 1MB

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

// envRequiredSeconds reads a required positive number of seconds.
// There is no safe default for presign expiry, so a bad value is fatal too.
func envRequiredSeconds(key string) time.Duration {
	v := envRequired(key)
	d, err := parseSeconds(v)
	if err != nil {
		slog.Error("config invalid seconds", "key", key, "value", v, "error", err)
		os.Exit(1)
	}
	return d
}

func parseSeconds(v string) (time.Duration, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return time.Duration(n) * time.Second, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "local" || c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
