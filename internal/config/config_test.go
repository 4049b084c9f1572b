package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "DATABASE_PATH", "JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST", "LOG_LEVEL", "LOG_PRETTY",
	"CORS_ORIGINS", "LOGIN_RATE_PER_MINUTE", "AMQP_URL", "AMQP_EXCHANGE", "STATS_SCHEDULE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	// Run from a scratch directory so a developer's .env cannot leak in.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./despesas.db", cfg.DatabasePath)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Empty(t, cfg.AMQPURL)
	assert.Equal(t, "@every 5m", cfg.StatsSchedule)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.False(t, cfg.LogPretty)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{
		ServerPort:         0,
		DatabasePath:       "",
		TokenTTL:           0,
		BcryptCost:         1,
		LoginRatePerMinute: 0,
		AMQPURL:            "amqp://localhost",
		StatsSchedule:      "not a schedule",
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"invalid port", "DATABASE_PATH", "JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST", "LOGIN_RATE_PER_MINUTE", "AMQP_EXCHANGE", "STATS_SCHEDULE"} {
		assert.Contains(t, err.Error(), want)
	}
}
