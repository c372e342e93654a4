// Package config_test tests the configuration loading for the kokoro audio service.
package config_test

import (
	"testing"

	"github.com/audio-studio/kokoro-service/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
jobs_subject = "tts.jobs"
audio_object_store_bucket = "AUDIO_FILES"

[kokoro]
base_url = "http://localhost:8880"
timeout_seconds = 300

[storage]
backend = "r2"
public_url = "https://audio.example.com"

[paths]
base_logs_dir = "/var/log/kokoro-service"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "tts.jobs", cfg.NATS.JobsSubject)
	assert.Equal(t, "AUDIO_FILES", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "http://localhost:8880", cfg.Kokoro.BaseURL)
	assert.Equal(t, 300, cfg.Kokoro.TimeoutSeconds)
	assert.Equal(t, config.BackendR2, cfg.Storage.Backend)
	assert.Equal(t, "https://audio.example.com", cfg.Storage.PublicURL)
	assert.Equal(t, "/var/log/kokoro-service", cfg.Paths.BaseLogsDir)
}
