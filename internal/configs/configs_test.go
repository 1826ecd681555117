package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so tests start from a
// known state regardless of the host environment.
func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "ADMIN_SECRET",
		"RESERVED_NICKNAME", "RETENTION_WINDOW", "SWEEP_INTERVAL",
		"ONE_NICKNAME_PER_IP", "CHECKPOINT_MESSAGES",
		"SNAPSHOT_BACKEND", "SNAPSHOT_INTERVAL", "SNAPSHOT_MESSAGE_LIMIT",
		"DATABASE_URL",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.AdminSecret)
	assert.Equal(t, "mefisto", cfg.ReservedNickname)
	assert.Equal(t, 24*time.Hour, cfg.RetentionWindow)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.OneNicknamePerIP)
	assert.Equal(t, 50, cfg.CheckpointMessages)
	assert.Equal(t, BackendPostgres, cfg.SnapshotBackend)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, 1000, cfg.SnapshotMessageLimit)
	assert.NotEmpty(t, cfg.DatabaseDSN)
}

func TestLoadConfigExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RESERVED_NICKNAME", "overseer")
	t.Setenv("RETENTION_WINDOW", "48h")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("ONE_NICKNAME_PER_IP", "true")
	t.Setenv("CHECKPOINT_MESSAGES", "10")
	t.Setenv("SNAPSHOT_INTERVAL", "1m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "overseer", cfg.ReservedNickname)
	assert.Equal(t, 48*time.Hour, cfg.RetentionWindow)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.True(t, cfg.OneNicknamePerIP)
	assert.Equal(t, 10, cfg.CheckpointMessages)
	assert.Equal(t, time.Minute, cfg.SnapshotInterval)
}

func TestLoadConfigInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric port", key: "PORT", value: "eighty"},
		{name: "port below range", key: "PORT", value: "80"},
		{name: "port above range", key: "PORT", value: "70000"},
		{name: "bad retention window", key: "RETENTION_WINDOW", value: "daily"},
		{name: "bad sweep interval", key: "SWEEP_INTERVAL", value: "often"},
		{name: "bad checkpoint count", key: "CHECKPOINT_MESSAGES", value: "many"},
		{name: "unknown snapshot backend", key: "SNAPSHOT_BACKEND", value: "redis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigProductionRequirements(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err, "ADMIN_SECRET is mandatory outside development")

	t.Setenv("ADMIN_SECRET", "s3cr3t")
	_, err = LoadConfig()
	require.Error(t, err, "DATABASE_URL is mandatory outside development")

	t.Setenv("DATABASE_URL", "postgres://chat:pw@db:5432/chat")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadConfigS3Backend(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNAPSHOT_BACKEND", "s3")

	_, err := LoadConfig()
	require.Error(t, err, "all four S3 variables are required")

	t.Setenv("S3_BUCKET_NAME", "chat-snapshots")
	t.Setenv("S3_ENDPOINT", "https://s3.example")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendS3, cfg.SnapshotBackend)
	assert.Equal(t, "chat-snapshots", cfg.S3BucketName)
	assert.Empty(t, cfg.DatabaseDSN, "the postgres DSN is untouched for the s3 backend")
}
