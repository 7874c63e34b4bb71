package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// VIBEWALL_LLM_GEMINI_API_KEY for llm.gemini_api_key.
const EnvPrefix = "VIBEWALL"

var validate = validator.New()

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if cfg.Generation.RetryMaxDelay < cfg.Generation.RetryMinDelay {
		return fmt.Errorf("configuration validation failed: generation.retry_max_delay (%s) is below retry_min_delay (%s)",
			cfg.Generation.RetryMaxDelay, cfg.Generation.RetryMinDelay)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Registered so AutomaticEnv picks it up during Unmarshal.
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("llm.api_version", "v1beta")
	v.SetDefault("llm.image_model", "gemini-3-pro-image-preview")
	v.SetDefault("llm.video_fast_model", "veo-3.1-fast-generate-preview")
	v.SetDefault("llm.video_multi_ref_model", "veo-3.1-generate-preview")
	v.SetDefault("llm.request_timeout", "5m")

	v.SetDefault("generation.max_image_attempts", 15)
	v.SetDefault("generation.retry_min_delay", "10s")
	v.SetDefault("generation.retry_growth_factor", 1.5)
	v.SetDefault("generation.retry_max_delay", "90s")
	v.SetDefault("generation.retry_jitter_max", "5s")
	v.SetDefault("generation.variation_count", 4)
	v.SetDefault("generation.variation_stagger", "8s")
	v.SetDefault("generation.max_concurrent_lanes", 0)
	v.SetDefault("generation.video_poll_interval", "10s")
	v.SetDefault("generation.max_video_polls", 180)
	v.SetDefault("generation.video_resolution", "720p")
	v.SetDefault("generation.poll_breaker_failures", 3)
	v.SetDefault("generation.poll_breaker_cooldown", "60s")

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.result_retention", "1h")
}
