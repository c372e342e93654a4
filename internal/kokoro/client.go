// Package kokoro provides an HTTP client for a standalone Kokoro inference
// server. The server holds the pretrained model; this client turns a job's
// text, voice and speed into raw audio samples.
package kokoro

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/audio-studio/kokoro-service/internal/core"
)

// API endpoints.
const (
	apiSpeech = "/v1/audio/speech"
	apiHealth = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerSampleRate  = "X-Sample-Rate"
	contentTypeJSON   = "application/json"
	contentTypePCM    = "audio/pcm"
)

// pcmFormat is the only response format the client requests; the raw frames
// feed the WAV encoder directly.
const pcmFormat = "pcm"

// Static errors.
var (
	ErrTextEmpty             = errors.New("text cannot be empty")
	ErrEmptyAudio            = errors.New("received empty audio data")
	ErrOddPayloadLength      = errors.New("PCM payload length is not sample-aligned")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrUnexpectedSampleRate  = errors.New("engine reported unexpected sample rate")
)

// Request is the JSON payload sent to the inference server.
type Request struct {
	// Input contains the text to convert to speech.
	Input string `json:"input"`

	// Voice selects the pretrained speaker profile.
	Voice string `json:"voice"`

	// Speed scales playback rate; 1.0 is the model's native pace.
	Speed float64 `json:"speed"`

	// ResponseFormat is always "pcm" for this client.
	ResponseFormat string `json:"response_format"`
}

// ErrorResponse is a structured error from the inference server.
type ErrorResponse struct {
	// Detail contains a human-readable error description.
	Detail string `json:"detail"`

	// ErrorCode provides a machine-readable error classification.
	ErrorCode string `json:"error_code,omitempty"`
}

// Client talks to the Kokoro inference server. It implements
// core.Synthesizer.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the inference server at baseURL (protocol
// and port included, e.g. "http://localhost:8880"). The timeout applies to
// every request, so it must cover full model inference for the longest
// expected text.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize requests speech generation and returns the decoded samples.
// The engine emits 16-bit little-endian PCM at 24 kHz; frames are converted
// to float32 in [-1.0, 1.0] for the rest of the pipeline.
func (c *Client) Synthesize(
	ctx context.Context,
	text, voice string,
	speed float64,
) (core.SynthesisResult, error) {
	if text == "" {
		return core.SynthesisResult{}, ErrTextEmpty
	}

	req := Request{
		Input:          text,
		Voice:          voice,
		Speed:          speed,
		ResponseFormat: pcmFormat,
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return core.SynthesisResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSpeech,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return core.SynthesisResult{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypePCM)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.SynthesisResult{}, fmt.Errorf(
			"failed to send request to inference server at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.SynthesisResult{}, c.parseErrorResponse(resp)
	}

	return c.decodeAudioResponse(resp)
}

// HealthCheck verifies the inference server is running and has its model
// loaded. It should be called once at service start to fail fast.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiHealth, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed for server at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// decodeAudioResponse validates the response shape and converts the PCM
// payload into float samples.
func (c *Client) decodeAudioResponse(resp *http.Response) (core.SynthesisResult, error) {
	contentType := resp.Header.Get(headerContentType)
	if contentType != contentTypePCM {
		return core.SynthesisResult{}, fmt.Errorf(
			"%w: expected %s, got %s",
			ErrUnexpectedContentType,
			contentTypePCM,
			contentType,
		)
	}

	rateErr := c.validateSampleRate(resp)
	if rateErr != nil {
		return core.SynthesisResult{}, rateErr
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.SynthesisResult{}, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(payload) == 0 {
		return core.SynthesisResult{}, ErrEmptyAudio
	}

	if len(payload)%2 != 0 {
		return core.SynthesisResult{}, fmt.Errorf(
			"%w: got %d bytes",
			ErrOddPayloadLength,
			len(payload),
		)
	}

	samples := make([]float32, len(payload)/2)
	for i := range samples {
		frame := int16(binary.LittleEndian.Uint16(payload[i*2:]))
		samples[i] = float32(frame) / float32(math.MaxInt16+1)
	}

	return core.SynthesisResult{
		Samples:    samples,
		SampleRate: core.SampleRate,
	}, nil
}

// validateSampleRate rejects responses whose declared rate differs from the
// engine's fixed 24 kHz output. Servers that omit the header are trusted.
func (c *Client) validateSampleRate(resp *http.Response) error {
	declared := resp.Header.Get(headerSampleRate)
	if declared == "" {
		return nil
	}

	rate, err := strconv.Atoi(declared)
	if err != nil {
		return fmt.Errorf("failed to parse %s header %q: %w", headerSampleRate, declared, err)
	}

	if rate != core.SampleRate {
		return fmt.Errorf(
			"%w: expected %d, got %d",
			ErrUnexpectedSampleRate,
			core.SampleRate,
			rate,
		)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the
// server, falling back to the raw body so diagnostics are never lost.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf(
			"inference server error (%s): %s (code: %s)",
			resp.Status,
			errorResp.Detail,
			errorResp.ErrorCode,
		)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		"inference server returned non-OK status: %s, body: %s",
		resp.Status,
		string(body),
	)
}
