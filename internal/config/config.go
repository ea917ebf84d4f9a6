package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Sidecar        SidecarConfig
	Events         EventsConfig
	Auth           AuthConfig
	Audit          AuditConfig
	Logging        LoggingConfig
	RateLimit      RateLimitConfig
	CircuitBreaker CircuitBreakerConfig
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SidecarConfig describes the local HTTP substrate that provides pub/sub,
// keyed state, service invocation and one-shot job scheduling.
type SidecarConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	PubsubName     string        `mapstructure:"pubsub_name"`
	TaskTopic      string        `mapstructure:"task_topic"`
	ReminderTopic  string        `mapstructure:"reminder_topic"`
	StateStore     string        `mapstructure:"state_store"`
	TaskAppID      string        `mapstructure:"task_app_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	InvokeTimeout  time.Duration `mapstructure:"invoke_timeout"`
}

type EventsConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Source  string      `mapstructure:"source"`
	Retry   RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type AuditConfig struct {
	IndexSize int `mapstructure:"index_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
