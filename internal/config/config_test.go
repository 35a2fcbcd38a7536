package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "urban_guardians", cfg.DatabaseName)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 5*time.Second, cfg.ConnectWait)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("DB_NAME", "staging")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("DB_CONNECT_WAIT", "garbage")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, "staging", cfg.DatabaseName)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	// Unparseable durations fall back to the default.
	assert.Equal(t, 5*time.Second, cfg.ConnectWait)
}
