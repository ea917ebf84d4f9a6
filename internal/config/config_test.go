package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Sidecar: SidecarConfig{
			BaseURL:    "http://localhost:3500/v1.0",
			PubsubName: "pubsub-kafka",
			TaskTopic:  "task-events",
		},
		Events: EventsConfig{
			Enabled: true,
			Source:  "task-service",
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     10 * time.Second,
				Multiplier:      2.0,
			},
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(cfg *Config) {},
			wantError: false,
		},
		{
			name:      "port zero",
			mutate:    func(cfg *Config) { cfg.Server.Port = 0 },
			wantError: true,
		},
		{
			name:      "port out of range",
			mutate:    func(cfg *Config) { cfg.Server.Port = 70000 },
			wantError: true,
		},
		{
			name:      "missing base url",
			mutate:    func(cfg *Config) { cfg.Sidecar.BaseURL = "" },
			wantError: true,
		},
		{
			name:      "missing pubsub with events enabled",
			mutate:    func(cfg *Config) { cfg.Sidecar.PubsubName = "" },
			wantError: true,
		},
		{
			name: "missing pubsub with events disabled",
			mutate: func(cfg *Config) {
				cfg.Events.Enabled = false
				cfg.Sidecar.PubsubName = ""
			},
			wantError: false,
		},
		{
			name:      "zero retry attempts",
			mutate:    func(cfg *Config) { cfg.Events.Retry.MaxAttempts = 0 },
			wantError: true,
		},
		{
			name:      "multiplier below one",
			mutate:    func(cfg *Config) { cfg.Events.Retry.Multiplier = 0.5 },
			wantError: true,
		},
		{
			name:      "negative audit index",
			mutate:    func(cfg *Config) { cfg.Audit.IndexSize = -1 },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8080
events:
  source: task-service
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3500/v1.0", cfg.Sidecar.BaseURL)
	assert.Equal(t, "pubsub-kafka", cfg.Sidecar.PubsubName)
	assert.Equal(t, "task-events", cfg.Sidecar.TaskTopic)
	assert.Equal(t, "reminder-events", cfg.Sidecar.ReminderTopic)
	assert.Equal(t, "statestore-postgres", cfg.Sidecar.StateStore)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, 3, cfg.Events.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Events.Retry.InitialInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
sidecar:
  task_topic: custom-topic
events:
  source: task-service
  retry:
    max_attempts: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "custom-topic", cfg.Sidecar.TaskTopic)
	assert.Equal(t, 5, cfg.Events.Retry.MaxAttempts)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SIDECAR_TASK_APP_ID", "other-backend")

	path := writeConfigFile(t, `
server:
  port: 8080
events:
  source: task-service
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other-backend", cfg.Sidecar.TaskAppID)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 0
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
