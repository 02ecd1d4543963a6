package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "uploads-bucket")
	t.Setenv("METADATA_TABLE", "files")
	t.Setenv("PRESIGN_EXPIRES_SECONDS", "900")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_VERSION", "")
	t.Setenv("PORT", "")
	t.Setenv("METADATA_DRIVER", "")
	t.Setenv("UPLOAD_RATE_LIMIT", "")
	t.Setenv("MAX_BODY_BYTES", "")

	cfg := Load()

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, "0.0.1-local", cfg.AppVersion)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, "uploads-bucket", cfg.S3Bucket)
	assert.Equal(t, "files", cfg.MetadataTable)
	assert.Equal(t, "dynamodb", cfg.MetadataDriver)
	assert.Equal(t, 15*time.Minute, cfg.PresignExpiry)
	assert.Equal(t, 0, cfg.UploadRateLimit)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_VERSION", "1.4.2")
	t.Setenv("PORT", "9000")
	t.Setenv("METADATA_DRIVER", "sqlite")
	t.Setenv("UPLOAD_RATE_LIMIT", "30")
	t.Setenv("S3_ACCESS_KEY", "minio")
	t.Setenv("DYNAMODB_ACCESS_KEY", "local")
	t.Setenv("DYNAMODB_SECRET_KEY", "local-secret")

	cfg := Load()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "1.4.2", cfg.AppVersion)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.MetadataDriver)
	assert.Equal(t, 30, cfg.UploadRateLimit)
	assert.Equal(t, "minio", cfg.S3AccessKey)
	assert.Equal(t, "local", cfg.DynamoAccessKey)
	assert.Equal(t, "local-secret", cfg.DynamoSecretKey)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	assert.Equal(t, 7, envInt("SOME_INT", 7))
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1", time.Second, false},
		{"3600", time.Hour, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"1h", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSeconds(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
