package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("EXTRACT_MAX_FILES", "3")
	os.Setenv("RATE_LIMIT_WINDOW_SEC", "60")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("EXTRACT_MAX_FILES")
		os.Unsetenv("RATE_LIMIT_WINDOW_SEC")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.False(t, cfg.MinIO.Enabled())
	assert.Equal(t, 3, cfg.Extract.MaxFiles)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 5, cfg.Extract.MaxFiles)
	assert.Equal(t, int64(10*1024*1024), cfg.Extract.MaxSizePerFile)
	assert.Equal(t, []string{"application/pdf", "image/jpeg", "image/png"}, cfg.Extract.AcceptedTypes)
	assert.Equal(t, "files", cfg.Extract.RequiredField)
	assert.Equal(t, 20, cfg.RateLimit.Limit)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, 120*time.Second, cfg.Backend.Timeout)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvInt64(t *testing.T) {
	key := "TEST_INT64_VAR"

	os.Setenv(key, "10485760")
	assert.Equal(t, int64(10485760), getEnvInt64(key, 0))

	os.Unsetenv(key)
	assert.Equal(t, int64(7), getEnvInt64(key, 7))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	def := []string{"a", "b"}

	os.Setenv(key, "application/pdf, image/png ,")
	assert.Equal(t, []string{"application/pdf", "image/png"}, getEnvList(key, def))

	os.Setenv(key, " , ")
	assert.Equal(t, def, getEnvList(key, def))

	os.Unsetenv(key)
	assert.Equal(t, def, getEnvList(key, def))
}
