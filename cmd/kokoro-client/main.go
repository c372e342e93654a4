// kokoro-client is an operator CLI for the kokoro audio service: it submits
// a synthesis job over NATS and prints the response, or checks the inference
// server's health.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/audio-studio/kokoro-service/internal/core"
	"github.com/audio-studio/kokoro-service/internal/kokoro"
	"github.com/audio-studio/kokoro-service/internal/worker"
	"github.com/nats-io/nats.go"
)

// Flag names.
const (
	flagText    = "text"
	flagVoice   = "voice"
	flagSpeed   = "speed"
	flagUser    = "user"
	flagProject = "project"
	flagChapter = "chapter"
	flagNATS    = "nats"
	flagSubject = "subject"
	flagTimeout = "timeout"
	flagEngine  = "engine"
	flagHealth  = "health"
)

// Flag descriptions.
const (
	flagTextDesc    = "Text to convert to speech"
	flagVoiceDesc   = "Voice identifier (defaults to the service default)"
	flagSpeedDesc   = "Playback speed (0 means the service default)"
	flagUserDesc    = "User id for storage key derivation"
	flagProjectDesc = "Project id for storage key derivation"
	flagChapterDesc = "Chapter id for storage key derivation"
	flagNATSDesc    = "NATS server URL"
	flagSubjectDesc = "Subject the service listens for jobs on"
	flagTimeoutDesc = "How long to wait for the job to finish"
	flagEngineDesc  = "Inference server base URL (used with --health)"
	flagHealthDesc  = "Check inference server health and exit"
)

// Defaults.
const (
	defaultSubject = "tts.jobs"
	defaultTimeout = 5 * time.Minute
	defaultEngine  = "http://localhost:8880"

	healthTimeout = 10 * time.Second
)

// ErrTextRequired indicates the client was invoked without text to submit.
var ErrTextRequired = errors.New("--text must be provided")

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text    string
	voice   string
	speed   float64
	user    string
	project string
	chapter string
	nats    string
	subject string
	timeout time.Duration
	engine  string
	health  bool
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	if flags.health {
		return handleHealthCheck(flags.engine)
	}

	if flags.text == "" {
		flag.Usage()

		return ErrTextRequired
	}

	return submitJob(flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.Float64Var(&flags.speed, flagSpeed, 0, flagSpeedDesc)
	flag.StringVar(&flags.user, flagUser, "", flagUserDesc)
	flag.StringVar(&flags.project, flagProject, "", flagProjectDesc)
	flag.StringVar(&flags.chapter, flagChapter, "", flagChapterDesc)
	flag.StringVar(&flags.nats, flagNATS, nats.DefaultURL, flagNATSDesc)
	flag.StringVar(&flags.subject, flagSubject, defaultSubject, flagSubjectDesc)
	flag.DurationVar(&flags.timeout, flagTimeout, defaultTimeout, flagTimeoutDesc)
	flag.StringVar(&flags.engine, flagEngine, defaultEngine, flagEngineDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.Parse()

	return flags
}

// handleHealthCheck pings the inference server directly and prints the result.
func handleHealthCheck(engineURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	client := kokoro.NewClient(engineURL, healthTimeout)

	err := client.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("Inference server is not healthy: %v\n", err)

		return err
	}

	fmt.Println("Inference server is healthy")

	return nil
}

// submitJob sends one job envelope over NATS and prints the response JSON.
func submitJob(flags appFlags) error {
	envelope := worker.JobEnvelope{
		Input: core.JobRequest{
			Text:      flags.text,
			Voice:     flags.voice,
			Speed:     nil,
			UserID:    flags.user,
			ProjectID: flags.project,
			ChapterID: flags.chapter,
		},
	}

	// Only a flag the operator actually set goes on the wire; the service
	// applies its own default otherwise.
	if flags.speed != 0 {
		envelope.Input.Speed = &flags.speed
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal job envelope: %w", err)
	}

	natsConnection, err := nats.Connect(flags.nats)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", flags.nats, err)
	}
	defer natsConnection.Close()

	replyMsg, err := natsConnection.Request(flags.subject, payload, flags.timeout)
	if err != nil {
		return fmt.Errorf("job request on subject %s failed: %w", flags.subject, err)
	}

	return printResponse(replyMsg.Data)
}

// printResponse pretty-prints the service's response JSON.
func printResponse(data []byte) error {
	var response core.Response

	err := json.Unmarshal(data, &response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	pretty, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}

	fmt.Println(string(pretty))

	if !response.Success {
		return fmt.Errorf("job failed: %s", response.Error)
	}

	return nil
}
