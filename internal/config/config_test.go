package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/relations")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8085", cfg.GRPCAddr)
	assert.Equal(t, "app.events", cfg.EventsExchange)
	assert.Equal(t, "logs.events", cfg.LogsExchange)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 10, cfg.SendRateBurst)
	assert.True(t, cfg.IsLocal())
}

func TestParseMissingRequired(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestParseInvalidDuration(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/relations")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_CONN_MAX_LIFETIME", "forever")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidateRejectsNonPositiveRate(t *testing.T) {
	cfg := Config{DBDSN: "x", JWTSecret: "y", SendRatePerSec: 0, SendRateBurst: 1}
	assert.Error(t, cfg.Validate())
}
