package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Task       TaskConfig       `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// LLMConfig contains the upstream Gemini settings.
type LLMConfig struct {
	GeminiAPIKey       string        `mapstructure:"gemini_api_key" validate:"required"`
	BaseURL            string        `mapstructure:"base_url" validate:"required,url"`
	APIVersion         string        `mapstructure:"api_version" validate:"required"`
	ImageModel         string        `mapstructure:"image_model" validate:"required"`
	VideoFastModel     string        `mapstructure:"video_fast_model" validate:"required"`
	VideoMultiRefModel string        `mapstructure:"video_multi_ref_model" validate:"required"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// GenerationConfig tunes retries, variations and video polling.
type GenerationConfig struct {
	MaxImageAttempts    int           `mapstructure:"max_image_attempts" validate:"required,gte=1,lte=100"`
	RetryMinDelay       time.Duration `mapstructure:"retry_min_delay" validate:"gte=0"`
	RetryGrowthFactor   float64       `mapstructure:"retry_growth_factor" validate:"gte=1"`
	RetryMaxDelay       time.Duration `mapstructure:"retry_max_delay" validate:"gte=0"`
	RetryJitterMax      time.Duration `mapstructure:"retry_jitter_max" validate:"gte=0"`
	VariationCount      int           `mapstructure:"variation_count" validate:"required,gte=1,lte=8"`
	VariationStagger    time.Duration `mapstructure:"variation_stagger" validate:"gte=0"`
	MaxConcurrentLanes  int           `mapstructure:"max_concurrent_lanes" validate:"gte=0"`
	VideoPollInterval   time.Duration `mapstructure:"video_poll_interval" validate:"required"`
	MaxVideoPolls       int           `mapstructure:"max_video_polls" validate:"gte=0"`
	VideoResolution     string        `mapstructure:"video_resolution" validate:"required,oneof=720p 1080p"`
	PollBreakerFailures uint32        `mapstructure:"poll_breaker_failures" validate:"required,gte=1"`
	PollBreakerCooldown time.Duration `mapstructure:"poll_breaker_cooldown" validate:"gte=0"`
}

// TaskConfig sizes the background worker pool.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gte=1"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gte=1"`

	// ResultRetention is how long finished generations stay queryable.
	ResultRetention time.Duration `mapstructure:"result_retention" validate:"gte=0"`
}
