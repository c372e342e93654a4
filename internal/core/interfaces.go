// Package core defines the domain types and interfaces for the kokoro audio service.
package core

import "context"

// SampleRate is the fixed output rate of the Kokoro engine, in Hz.
const SampleRate = 24000

// AudioFormat is the container format produced by the pipeline.
const AudioFormat = "wav"

// ContentTypeWAV is the content type recorded for uploaded audio objects.
const ContentTypeWAV = "audio/wav"

// DefaultVoice is used when a job does not name a voice.
const DefaultVoice = "af_heart"

// DefaultSpeed is used when a job does not set a playback speed.
const DefaultSpeed = 1.0

// SupportedVoices is the closed set of voice identifiers the engine ships with.
// Extending it requires a redeploy of the inference server.
var SupportedVoices = map[string]struct{}{
	"af_heart":   {},
	"af_alloy":   {},
	"af_nova":    {},
	"af_bella":   {},
	"am_michael": {},
	"af_sarah":   {},
}

// JobRequest is a normalized text-to-speech job. UserID, ProjectID and
// ChapterID are opaque to the pipeline and only feed storage key derivation.
//
// Speed is a pointer so an omitted field stays distinguishable from an
// explicit zero: nil takes the default, an explicit zero or negative value
// is rejected by the validator.
type JobRequest struct {
	Text      string   `json:"text"`
	Voice     string   `json:"voice,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	UserID    string   `json:"user_id"`
	ProjectID string   `json:"project_id"`
	ChapterID string   `json:"chapter_id"`
}

// SynthesisResult holds the raw audio produced for one job.
type SynthesisResult struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the audio length in seconds.
func (r SynthesisResult) Duration() float64 {
	if r.SampleRate <= 0 {
		return 0
	}

	return float64(len(r.Samples)) / float64(r.SampleRate)
}

// Response is the job outcome returned to the invoking platform. Exactly one
// of AudioURL or Error is populated, keyed off Success. The success and error
// wire shapes are distinct; see MarshalJSON.
type Response struct {
	Success        bool    `json:"success"`
	AudioURL       string  `json:"audio_url"`
	Error          string  `json:"error"`
	Duration       float64 `json:"duration"`
	Voice          string  `json:"voice"`
	TextLength     int     `json:"text_length"`
	GenerationTime float64 `json:"generation_time"`
	UploadTime     float64 `json:"upload_time"`
	Format         string  `json:"format"`
	SampleRate     int     `json:"sample_rate"`
}

// Synthesizer produces raw audio for a text, voice and speed. Implementations
// wrap a pretrained model loaded once at process start and must be usable
// across sequential jobs without per-job state.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, speed float64) (SynthesisResult, error)
}

// ObjectStore writes a byte payload under a key and returns the public URL the
// object is reachable at. A second upload to the same key overwrites the
// previous object.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// JobHandler runs one job to completion. Implementations never return an
// error; every failure is folded into an error-shaped Response.
type JobHandler interface {
	Handle(ctx context.Context, req JobRequest) Response
}
