// Package pipeline implements the job pipeline: payload validation, storage
// key derivation, and the orchestrator that sequences synthesis, encoding and
// upload into a single response.
package pipeline

import (
	"fmt"

	"github.com/audio-studio/kokoro-service/internal/core"
	"github.com/audio-studio/kokoro-service/internal/text"
)

// Validation errors. Each wraps core.ErrValidation so the orchestrator and
// callers can classify without matching individual sentinels.
var (
	// ErrTextEmpty indicates the job carried no text to synthesize.
	ErrTextEmpty = fmt.Errorf("%w: no text provided", core.ErrValidation)
	// ErrUnsupportedVoice indicates the requested voice is not in the supported set.
	ErrUnsupportedVoice = fmt.Errorf("%w: unsupported voice", core.ErrValidation)
	// ErrSpeedNotPositive indicates a zero or negative playback speed.
	ErrSpeedNotPositive = fmt.Errorf("%w: speed must be positive", core.ErrValidation)
)

// Validate normalizes a raw job payload into a JobRequest the pipeline can
// run. Text is normalized for synthesis and must be non-empty; an absent
// voice falls back to the default and an unknown voice is rejected; an absent
// speed falls back to 1.0 while a supplied speed must be positive. UserID,
// ProjectID and ChapterID pass through unchanged. Validate has no side
// effects.
func Validate(raw core.JobRequest) (core.JobRequest, error) {
	normalized := raw
	normalized.Text = text.Normalize(raw.Text)

	if normalized.Text == "" {
		return core.JobRequest{}, ErrTextEmpty
	}

	if normalized.Voice == "" {
		normalized.Voice = core.DefaultVoice
	}

	if _, ok := core.SupportedVoices[normalized.Voice]; !ok {
		return core.JobRequest{}, fmt.Errorf("%w: '%s'", ErrUnsupportedVoice, normalized.Voice)
	}

	// A nil speed means the field was omitted from the payload; an explicit
	// zero is rejected like any other non-positive value.
	if normalized.Speed == nil {
		defaultSpeed := core.DefaultSpeed
		normalized.Speed = &defaultSpeed
	}

	if *normalized.Speed <= 0 {
		return core.JobRequest{}, fmt.Errorf("%w: got %g", ErrSpeedNotPositive, *normalized.Speed)
	}

	return normalized, nil
}
