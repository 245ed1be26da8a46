package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFileParses(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join("..", "..", "..", "config", "config.toml"))
	require.NoError(t, v.ReadInConfig())

	cfg := &Config{}
	require.NoError(t, v.Unmarshal(cfg))

	assert.Equal(t, 8080, cfg.ServicePort)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 500, cfg.Migration.BatchSize)
	assert.InDelta(t, 0.2, cfg.RateLimit.RPS, 0.0001)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_PUBLIC_URL", "http://cdn.local/bucket/")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_TIMEOUT", "3s")
	t.Setenv("MIGRATION_BATCH_SIZE", "")
	t.Setenv("DB_DSN", "host=pg")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("SITE_URL", "")

	cfg := &Config{}
	require.NoError(t, cfg.applyEnv())

	assert.Equal(t, "secret", cfg.JWT.Token)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpiresIn)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr())
	assert.True(t, cfg.MinIO.Enabled())
	assert.Equal(t, "http://cdn.local/bucket", cfg.MinIO.PublicURL)
	assert.False(t, cfg.SMTP.Enabled())
	assert.Equal(t, 3*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, DefaultBatchSize, cfg.Migration.BatchSize)
	assert.Equal(t, "host=pg", cfg.Migration.PostgresDSN)
	assert.Equal(t, 8080, cfg.ServicePort)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
}

func TestApplyEnvErrors(t *testing.T) {
	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		assert.Error(t, (&Config{}).applyEnv())
	})

	t.Run("bad redis port", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("REDIS_PORT", "abc")
		assert.ErrorContains(t, (&Config{}).applyEnv(), "redis port")
	})

	t.Run("bad batch size", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("REDIS_PORT", "6379")
		t.Setenv("MIGRATION_BATCH_SIZE", "-1")
		assert.ErrorContains(t, (&Config{}).applyEnv(), "batch size")
	})
}

func TestMigrationFromEnv(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("MIGRATION_BATCH_SIZE", "")
	t.Setenv("MIGRATION_STATUS_FILE", "")
	t.Setenv("MINIO_BUCKET", "")

	envFile := filepath.Join(t.TempDir(), ".env.migration")
	content := "MYSQL_DSN=root:pw@tcp(db:3306)/legacy\nMIGRATION_BATCH_SIZE=50\nMINIO_BUCKET=images\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv не перезаписывает уже заданные переменные, поэтому снимаем их
	for _, key := range []string{"MYSQL_DSN", "MIGRATION_BATCH_SIZE", "MINIO_BUCKET"} {
		require.NoError(t, os.Unsetenv(key))
	}

	m, minio, err := MigrationFromEnv(envFile)
	require.NoError(t, err)
	assert.Equal(t, "root:pw@tcp(db:3306)/legacy", m.MySQLDSN)
	assert.Equal(t, 50, m.BatchSize)
	assert.Equal(t, DefaultStatusFile, m.StatusFile)
	assert.Equal(t, "images", minio.Bucket)

	t.Run("missing file falls back to environment", func(t *testing.T) {
		_, _, err := MigrationFromEnv(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
	})
}
