package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	for name, value := range envVars {
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	return func() {
		for name, value := range originalValues {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies the defaults applied when only the API key is set.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"VIBEWALL_LLM_GEMINI_API_KEY": "test-api-key",
		"VIBEWALL_SERVER_PORT":        "",
		"VIBEWALL_SERVER_LOG_LEVEL":   "",
	})
	defer cleanup()

	cfg, err := Load("")

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "json", cfg.Server.LogFormat)

	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.LLM.BaseURL)
	assert.Equal(t, "v1beta", cfg.LLM.APIVersion)
	assert.Equal(t, "gemini-3-pro-image-preview", cfg.LLM.ImageModel)
	assert.Equal(t, "veo-3.1-fast-generate-preview", cfg.LLM.VideoFastModel)
	assert.Equal(t, "veo-3.1-generate-preview", cfg.LLM.VideoMultiRefModel)

	assert.Equal(t, 15, cfg.Generation.MaxImageAttempts)
	assert.Equal(t, 10*time.Second, cfg.Generation.RetryMinDelay)
	assert.InDelta(t, 1.5, cfg.Generation.RetryGrowthFactor, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.Generation.RetryMaxDelay)
	assert.Equal(t, 5*time.Second, cfg.Generation.RetryJitterMax)
	assert.Equal(t, 4, cfg.Generation.VariationCount)
	assert.Equal(t, 8*time.Second, cfg.Generation.VariationStagger)
	assert.Equal(t, 10*time.Second, cfg.Generation.VideoPollInterval)
	assert.Equal(t, 180, cfg.Generation.MaxVideoPolls)
	assert.Equal(t, "720p", cfg.Generation.VideoResolution)
	assert.Equal(t, uint32(3), cfg.Generation.PollBreakerFailures)

	assert.Equal(t, 2, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Equal(t, time.Hour, cfg.Task.ResultRetention)
}

// TestLoadFromEnv verifies that environment variables override defaults.
func TestLoadFromEnv(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"VIBEWALL_SERVER_PORT":                   "9090",
		"VIBEWALL_SERVER_LOG_LEVEL":              "debug",
		"VIBEWALL_SERVER_LOG_FORMAT":             "text",
		"VIBEWALL_LLM_GEMINI_API_KEY":            "test-api-key",
		"VIBEWALL_GENERATION_MAX_IMAGE_ATTEMPTS": "5",
		"VIBEWALL_GENERATION_VARIATION_STAGGER":  "2s",
		"VIBEWALL_TASK_WORKER_COUNT":             "6",
	})
	defer cleanup()

	cfg, err := Load("")

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "text", cfg.Server.LogFormat)
	assert.Equal(t, "test-api-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 5, cfg.Generation.MaxImageAttempts)
	assert.Equal(t, 2*time.Second, cfg.Generation.VariationStagger)
	assert.Equal(t, 6, cfg.Task.WorkerCount)
}

// TestLoadFromFile verifies that a YAML file is read and env still wins.
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibewall.yaml")
	content := []byte(`
server:
  port: 7070
llm:
  gemini_api_key: file-key
generation:
  variation_count: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cleanup := setupEnv(t, map[string]string{
		"VIBEWALL_SERVER_PORT":        "7171",
		"VIBEWALL_LLM_GEMINI_API_KEY": "",
	})
	defer cleanup()

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7171, cfg.Server.Port)
	assert.Equal(t, "file-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 2, cfg.Generation.VariationCount)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name: "Missing API key",
			envVars: map[string]string{
				"VIBEWALL_LLM_GEMINI_API_KEY": "",
			},
		},
		{
			name: "Invalid port number",
			envVars: map[string]string{
				"VIBEWALL_SERVER_PORT":        "999999",
				"VIBEWALL_LLM_GEMINI_API_KEY": "test-api-key",
			},
		},
		{
			name: "Invalid log level",
			envVars: map[string]string{
				"VIBEWALL_SERVER_LOG_LEVEL":   "invalid-level",
				"VIBEWALL_LLM_GEMINI_API_KEY": "test-api-key",
			},
		},
		{
			name: "Invalid log format",
			envVars: map[string]string{
				"VIBEWALL_SERVER_LOG_FORMAT":  "xml",
				"VIBEWALL_LLM_GEMINI_API_KEY": "test-api-key",
			},
		},
		{
			name: "Unsupported video resolution",
			envVars: map[string]string{
				"VIBEWALL_GENERATION_VIDEO_RESOLUTION": "4k",
				"VIBEWALL_LLM_GEMINI_API_KEY":          "test-api-key",
			},
		},
		{
			name: "Max delay below min delay",
			envVars: map[string]string{
				"VIBEWALL_GENERATION_RETRY_MAX_DELAY": "1s",
				"VIBEWALL_LLM_GEMINI_API_KEY":         "test-api-key",
			},
		},
		{
			name: "Zero variations",
			envVars: map[string]string{
				"VIBEWALL_GENERATION_VARIATION_COUNT": "0",
				"VIBEWALL_LLM_GEMINI_API_KEY":         "test-api-key",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanup := setupEnv(t, tc.envVars)
			defer cleanup()

			cfg, err := Load("")

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg)
		})
	}
}
