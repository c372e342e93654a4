package core

import (
	"encoding/json"
	"fmt"
)

// successPayload is the documented success wire shape. Every metadata key is
// present even when its value rounds to zero, so consumers never have to
// treat short audio or a fast upload as a missing field.
type successPayload struct {
	Success        bool    `json:"success"`
	AudioURL       string  `json:"audio_url"`
	Duration       float64 `json:"duration"`
	Voice          string  `json:"voice"`
	TextLength     int     `json:"text_length"`
	GenerationTime float64 `json:"generation_time"`
	UploadTime     float64 `json:"upload_time"`
	Format         string  `json:"format"`
	SampleRate     int     `json:"sample_rate"`
}

// errorPayload is the documented error wire shape: the success flag and the
// message, nothing else.
type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits the wire shape matching the job outcome, so error
// responses never leak zero-valued metadata fields and success responses
// always carry all of them.
func (r Response) MarshalJSON() ([]byte, error) {
	if !r.Success {
		payload, err := json.Marshal(errorPayload{
			Success: false,
			Error:   r.Error,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal error response: %w", err)
		}

		return payload, nil
	}

	payload, err := json.Marshal(successPayload{
		Success:        true,
		AudioURL:       r.AudioURL,
		Duration:       r.Duration,
		Voice:          r.Voice,
		TextLength:     r.TextLength,
		GenerationTime: r.GenerationTime,
		UploadTime:     r.UploadTime,
		Format:         r.Format,
		SampleRate:     r.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal success response: %w", err)
	}

	return payload, nil
}
