package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.DuelChoiceTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("ALLOWED_ORIGINS", "localhost:5173,example.com")
	t.Setenv("DUEL_CHOICE_TIMEOUT", "0")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, []string{"localhost:5173", "example.com"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.DuelChoiceTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port too large", "PORT", "70000"},
		{"port not a number", "PORT", "abc"},
		{"empty queue", "SEND_QUEUE_SIZE", "0"},
		{"negative timeout", "DUEL_CHOICE_TIMEOUT", "-1s"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"zero rate window", "RATE_LIMIT_WINDOW", "0s"},
		{"zero write timeout", "WRITE_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
