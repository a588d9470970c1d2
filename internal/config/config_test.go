package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("MINIO_USE_SSL", "true")
	os.Setenv("STORAGE_BACKEND", "fs")
	os.Setenv("UPLOAD_ARTICLE_MAX_BYTES", "1048576")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("MINIO_USE_SSL")
		os.Unsetenv("STORAGE_BACKEND")
		os.Unsetenv("UPLOAD_ARTICLE_MAX_BYTES")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, "fs", cfg.Storage.Backend)
	assert.Equal(t, int64(1<<20), cfg.Upload.ArticleMaxBytes)
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("UPLOAD_ARTICLE_MAX_BYTES")
	os.Unsetenv("UPLOAD_AVATAR_MAX_BYTES")
	os.Unsetenv("DB_DRIVER")

	cfg := Load()

	assert.Equal(t, int64(10<<20), cfg.Upload.ArticleMaxBytes)
	assert.Equal(t, int64(2<<20), cfg.Upload.AvatarMaxBytes)
	assert.Equal(t, "postgres", cfg.Database.Driver)
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
	assert.Equal(t, 7, getEnvInt(key, 7))
}

func TestGetEnvInt64(t *testing.T) {
	key := "TEST_INT64_VAR"

	os.Setenv(key, "2097152")
	assert.Equal(t, int64(2<<20), getEnvInt64(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, int64(5), getEnvInt64(key, 5))

	os.Unsetenv(key)
	assert.Equal(t, int64(5), getEnvInt64(key, 5))
}
