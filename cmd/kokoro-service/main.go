// main package for the kokoro audio service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audio-studio/kokoro-service/internal/config"
	"github.com/audio-studio/kokoro-service/internal/core"
	"github.com/audio-studio/kokoro-service/internal/kokoro"
	"github.com/audio-studio/kokoro-service/internal/objectstore"
	"github.com/audio-studio/kokoro-service/internal/pipeline"
	"github.com/audio-studio/kokoro-service/internal/worker"
	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
)

const healthCheckTimeout = 10 * time.Second

// defaultJobTimeoutSeconds bounds a whole job when the configuration does
// not set one. Long texts dominate; synthesis is the slow step.
const defaultJobTimeoutSeconds = 300

// ErrUnknownStorageBackend indicates an unrecognized [storage] backend value.
var ErrUnknownStorageBackend = errors.New("unknown storage backend")

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "kokoro-service-bootstrap.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		// If bootstrap logger fails, we can only print to stderr
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return runService(cfg, finalLog)
}

// runService wires the pipeline's collaborators and runs the worker until
// the process is told to stop.
func runService(cfg *config.Config, log *logger.Logger) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	store, err := buildStore(cfg, natsConnection)
	if err != nil {
		return fmt.Errorf("failed to build object store: %w", err)
	}

	jobTimeout := time.Duration(cfg.Kokoro.TimeoutSeconds) * time.Second
	if jobTimeout <= 0 {
		jobTimeout = defaultJobTimeoutSeconds * time.Second
	}

	synthesizer := kokoro.NewClient(cfg.Kokoro.BaseURL, jobTimeout)

	healthErr := checkEngineHealth(synthesizer)
	if healthErr != nil {
		return healthErr
	}

	log.Info("Inference server at %s is healthy.", cfg.Kokoro.BaseURL)

	jobPipeline := pipeline.New(synthesizer, store, log)

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.JobsSubject,
		jobPipeline,
		jobTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.System(
		"Kokoro audio service initialized. Listening for jobs on subject: %s",
		cfg.NATS.JobsSubject,
	)

	runErr := natsWorker.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("worker stopped with error: %w", runErr)
	}

	return nil
}

// buildStore selects the storage backend. R2 is the default; its credentials
// are injected by the hosting platform as environment variables.
func buildStore(cfg *config.Config, natsConnection *nats.Conn) (core.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendNATS:
		jetstreamContext, err := natsConnection.JetStream()
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}

		store, err := objectstore.NewNatsStore(
			jetstreamContext,
			cfg.NATS.AudioObjectStoreBucket,
			cfg.Storage.PublicURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS object store: %w", err)
		}

		return store, nil
	case config.BackendR2, "":
		store, err := objectstore.NewR2StoreFromEnv()
		if err != nil {
			return nil, fmt.Errorf("failed to create R2 object store: %w", err)
		}

		return store, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownStorageBackend, cfg.Storage.Backend)
	}
}

func checkEngineHealth(client *kokoro.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	err := client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("inference server health check failed: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
