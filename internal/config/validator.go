package config

import (
	"fmt"
	"net/url"
)

func ValidateStatic(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Sidecar.BaseURL == "" {
		return fmt.Errorf("sidecar.base_url is required")
	}
	if _, err := url.Parse(cfg.Sidecar.BaseURL); err != nil {
		return fmt.Errorf("sidecar.base_url is not a valid URL: %w", err)
	}

	if cfg.Events.Enabled {
		if cfg.Sidecar.PubsubName == "" {
			return fmt.Errorf("sidecar.pubsub_name is required when events are enabled")
		}
		if cfg.Sidecar.TaskTopic == "" {
			return fmt.Errorf("sidecar.task_topic is required when events are enabled")
		}
	}

	if cfg.Events.Retry.MaxAttempts < 1 {
		return fmt.Errorf("events.retry.max_attempts must be at least 1, got %d", cfg.Events.Retry.MaxAttempts)
	}
	if cfg.Events.Retry.Multiplier < 1.0 {
		return fmt.Errorf("events.retry.multiplier must be at least 1.0, got %f", cfg.Events.Retry.Multiplier)
	}

	if cfg.Audit.IndexSize < 0 {
		return fmt.Errorf("audit.index_size must not be negative, got %d", cfg.Audit.IndexSize)
	}

	return nil
}
