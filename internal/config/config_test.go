package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("RUN_TIMEOUT", "")
	t.Setenv("RUN_POLL_INTERVAL", "")
	t.Setenv("CHAT_BACKEND", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("SYSTEM_PROMPT", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, BackendAssistant, cfg.ChatBackend)
	assert.Equal(t, 90*time.Second, cfg.RunTimeout)
	assert.Equal(t, time.Second, cfg.RunPollInterval)
	assert.Equal(t, DefaultSystemPrompt, cfg.SystemPrompt)
	assert.False(t, cfg.PersistenceEnabled())
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "go duration", value: "1500ms", want: 1500 * time.Millisecond},
		{name: "plain seconds", value: "45", want: 45 * time.Second},
		{name: "garbage falls back", value: "soon", want: 7 * time.Second},
		{name: "unset falls back", value: "", want: 7 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getEnvDuration("TEST_DURATION", 7*time.Second))
		})
	}
}

func TestPollIntervalFloor(t *testing.T) {
	t.Setenv("RUN_POLL_INTERVAL", "200ms")
	cfg := Load()
	assert.Equal(t, time.Second, cfg.RunPollInterval)

	t.Setenv("RUN_POLL_INTERVAL", "3s")
	cfg = Load()
	assert.Equal(t, 3*time.Second, cfg.RunPollInterval)
}

func TestTablePrefix(t *testing.T) {
	tests := []struct {
		env      string
		override string
		want     string
	}{
		{env: "prod", want: "prod_"},
		{env: "test", want: "test_"},
		{env: "staging", want: "dev_"},
		{env: "prod", override: "custom_", want: "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.env+tt.override, func(t *testing.T) {
			t.Setenv("TABLE_PREFIX", tt.override)
			assert.Equal(t, tt.want, getTablePrefix(tt.env))
		})
	}
}
