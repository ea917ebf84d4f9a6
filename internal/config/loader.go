package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("sidecar.base_url", "http://localhost:3500/v1.0")
	viper.SetDefault("sidecar.pubsub_name", "pubsub-kafka")
	viper.SetDefault("sidecar.task_topic", "task-events")
	viper.SetDefault("sidecar.reminder_topic", "reminder-events")
	viper.SetDefault("sidecar.state_store", "statestore-postgres")
	viper.SetDefault("sidecar.task_app_id", "backend")
	viper.SetDefault("sidecar.request_timeout", 5*time.Second)
	viper.SetDefault("sidecar.invoke_timeout", 10*time.Second)

	viper.SetDefault("events.enabled", true)
	viper.SetDefault("events.retry.max_attempts", 3)
	viper.SetDefault("events.retry.initial_interval", 500*time.Millisecond)
	viper.SetDefault("events.retry.max_interval", 10*time.Second)
	viper.SetDefault("events.retry.multiplier", 2.0)

	viper.SetDefault("audit.index_size", 1000)
	viper.SetDefault("logging.level", "info")
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")

	viper.BindEnv("sidecar.base_url", "SIDECAR_BASE_URL")
	viper.BindEnv("sidecar.pubsub_name", "SIDECAR_PUBSUB_NAME")
	viper.BindEnv("sidecar.task_topic", "SIDECAR_TASK_TOPIC")
	viper.BindEnv("sidecar.reminder_topic", "SIDECAR_REMINDER_TOPIC")
	viper.BindEnv("sidecar.state_store", "SIDECAR_STATE_STORE")
	viper.BindEnv("sidecar.task_app_id", "SIDECAR_TASK_APP_ID")

	viper.BindEnv("events.enabled", "EVENTS_ENABLED")
	viper.BindEnv("events.source", "EVENTS_SOURCE")

	viper.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
}
