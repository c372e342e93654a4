package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/audio-studio/kokoro-service/internal/core"
	"github.com/audio-studio/kokoro-service/internal/wav"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

// Log formats.
const (
	logFmtJobRejected    = "job %s rejected: %v"
	logFmtJobSynthesized = "job %s: synthesized %.2fs of audio in %.2fs (voice %s)"
	logFmtJobUploaded    = "job %s: uploaded %d bytes to %s in %.2fs"
	logFmtJobFailed      = "job %s failed: %v"
)

// Pipeline sequences one job through validation, synthesis, encoding and
// upload. It holds no per-job state; a single Pipeline serves all jobs of a
// process sequentially.
type Pipeline struct {
	synthesizer core.Synthesizer
	store       core.ObjectStore
	log         *logger.Logger
}

// New creates a Pipeline. The synthesizer wraps the process-wide model and
// the store owns the durable side of the job; both are injected so the
// pipeline can run against stubs in tests.
func New(synthesizer core.Synthesizer, store core.ObjectStore, log *logger.Logger) *Pipeline {
	return &Pipeline{
		synthesizer: synthesizer,
		store:       store,
		log:         log,
	}
}

// Handle runs one job to completion and always returns a well-formed
// response: every failure is caught here and converted into an error-shaped
// response, so no error escapes to the invoking platform.
//
// On success exactly one object-store write has happened; on any failure
// before the upload step, none.
func (p *Pipeline) Handle(ctx context.Context, raw core.JobRequest) core.Response {
	jobID := uuid.NewString()

	req, err := Validate(raw)
	if err != nil {
		p.log.Error(logFmtJobRejected, jobID, err)

		return errorResponse(err)
	}

	generationStart := time.Now()

	result, err := p.synthesizer.Synthesize(ctx, req.Text, req.Voice, *req.Speed)
	if err != nil {
		failure := fmt.Errorf("%w: %w", core.ErrSynthesis, err)
		p.log.Error(logFmtJobFailed, jobID, failure)

		return errorResponse(failure)
	}

	generationTime := time.Since(generationStart).Seconds()

	p.log.Info(logFmtJobSynthesized, jobID, result.Duration(), generationTime, req.Voice)

	wavBytes, err := wav.Encode(result.Samples, result.SampleRate)
	if err != nil {
		failure := fmt.Errorf("%w: %w", core.ErrEncoding, err)
		p.log.Error(logFmtJobFailed, jobID, failure)

		return errorResponse(failure)
	}

	key := objectKey(req)
	uploadStart := time.Now()

	audioURL, err := p.store.Upload(ctx, key, wavBytes, core.ContentTypeWAV)
	if err != nil {
		// Synthesis work is discarded here; the invoking platform owns
		// whole-job retries.
		failure := fmt.Errorf("%w: %w", core.ErrUpload, err)
		p.log.Error(logFmtJobFailed, jobID, failure)

		return errorResponse(failure)
	}

	uploadTime := time.Since(uploadStart).Seconds()

	p.log.Info(logFmtJobUploaded, jobID, len(wavBytes), key, uploadTime)

	return core.Response{
		Success:        true,
		AudioURL:       audioURL,
		Error:          "",
		Duration:       round2(result.Duration()),
		Voice:          req.Voice,
		TextLength:     utf8.RuneCountInString(raw.Text),
		GenerationTime: round2(generationTime),
		UploadTime:     round2(uploadTime),
		Format:         core.AudioFormat,
		SampleRate:     result.SampleRate,
	}
}

// objectKey picks the deterministic key when the job names a project and
// chapter, and a random per-job key otherwise.
func objectKey(req core.JobRequest) string {
	if req.ProjectID == "" || req.ChapterID == "" {
		return fallbackKey(req.UserID)
	}

	return DeriveKey(req.UserID, req.ProjectID, req.ChapterID)
}

func errorResponse(err error) core.Response {
	return core.Response{
		Success:        false,
		AudioURL:       "",
		Error:          err.Error(),
		Duration:       0,
		Voice:          "",
		TextLength:     0,
		GenerationTime: 0,
		UploadTime:     0,
		Format:         "",
		SampleRate:     0,
	}
}

// round2 matches the response contract: timings and duration are reported
// with two decimal places.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
