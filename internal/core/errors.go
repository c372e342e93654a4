package core

import "errors"

// Error categories for the job pipeline. Every failure a job can produce
// wraps exactly one of these, so callers can classify with errors.Is without
// knowing which component failed.
var (
	// ErrValidation indicates a malformed or out-of-range job payload.
	ErrValidation = errors.New("validation error")
	// ErrSynthesis indicates the voice model failed to produce audio.
	ErrSynthesis = errors.New("synthesis error")
	// ErrEncoding indicates the synthesis output could not be containerized.
	ErrEncoding = errors.New("encoding error")
	// ErrUpload indicates the object store write failed.
	ErrUpload = errors.New("upload error")
)
