package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WS_PORT", "NODE_ENV", "SALT1", "SALT2", "MOTD", "WS_SEND_QUEUE_SIZE"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Production)
	assert.Empty(t, cfg.Salt1)
	assert.Empty(t, cfg.Salt2)
	assert.Equal(t, "Welcome to Multiplayer Piano!", cfg.MOTD)
	assert.Equal(t, 256, cfg.SendQueueSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WS_PORT", "9090")
	t.Setenv("SALT1", "north")
	t.Setenv("SALT2", "sea")
	t.Setenv("MOTD", "ahoy")
	t.Setenv("WS_SEND_QUEUE_SIZE", "64")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "north", cfg.Salt1)
	assert.Equal(t, "sea", cfg.Salt2)
	assert.Equal(t, "ahoy", cfg.MOTD)
	assert.Equal(t, 64, cfg.SendQueueSize)
}

func TestProductionDetection(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{"preprod", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("env="+tt.env, func(t *testing.T) {
			t.Setenv("NODE_ENV", tt.env)
			assert.Equal(t, tt.want, Load().Production)
		})
	}
}

func TestMalformedQueueSizeKeepsDefault(t *testing.T) {
	t.Setenv("WS_SEND_QUEUE_SIZE", "lots")
	assert.Equal(t, 256, Load().SendQueueSize)
}
