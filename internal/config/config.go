// Package config provides the configuration structure for the kokoro audio
// service. Everything except storage credentials lives in TOML; the R2
// credentials are injected by the hosting platform as environment variables
// and read by the object store directly.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Storage backend identifiers.
const (
	// BackendR2 stores audio in a Cloudflare R2 bucket.
	BackendR2 = "r2"
	// BackendNATS stores audio in a NATS JetStream object-store bucket.
	BackendNATS = "nats"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                    string `toml:"url"`
	JobsSubject            string `toml:"jobs_subject"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// KokoroConfig holds the configuration for the inference server.
type KokoroConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StorageConfig selects the storage backend for generated audio. PublicURL
// is the announced base address for the NATS backend; the R2 backend takes
// its public base URL from the environment alongside the credentials.
type StorageConfig struct {
	Backend   string `toml:"backend"`
	PublicURL string `toml:"public_url"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS    NATSConfig    `toml:"nats"`
	Kokoro  KokoroConfig  `toml:"kokoro"`
	Storage StorageConfig `toml:"storage"`
	Paths   PathsConfig   `toml:"paths"`
}

// Load loads the configuration for the kokoro audio service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
