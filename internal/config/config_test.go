package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "3001")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.App.HTTPPort)
	assert.Equal(t, "freelance-hub", cfg.App.AppName)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.App.CORSOrigins)
	assert.Equal(t, "public/locales", cfg.Locales.Dir)
	assert.Equal(t, []string{"en", "nl"}, cfg.Locales.Languages)
	assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
	assert.Equal(t, "freelancer-store", cfg.Store.Name)
	assert.False(t, cfg.Store.RejectDuplicateEmail)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
}

func TestFromViper_MissingPort(t *testing.T) {
	t.Setenv("HTTP_PORT", "")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestFromViper_RedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("HTTP_PORT", "3001")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissingRequiredEnv)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}

func TestFromViper_UnknownBackend(t *testing.T) {
	t.Setenv("HTTP_PORT", "3001")
	t.Setenv("STORE_BACKEND", "s3")

	_, err := FromViper(viper.New())
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestFromViper_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", ":8080")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("STORE_REJECT_DUPLICATE_EMAIL", "true")
	t.Setenv("LOCALES_RELOAD_SPEC", "@every 1m")
	t.Setenv("REDIS_DB", "3")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
	assert.True(t, cfg.Store.RejectDuplicateEmail)
	assert.Equal(t, "@every 1m", cfg.Locales.ReloadSpec)
	assert.Equal(t, 3, cfg.Redis.DB)
}
