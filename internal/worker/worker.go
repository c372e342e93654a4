// Package worker provides a NATS worker that processes text-to-speech jobs.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/audio-studio/kokoro-service/internal/core"
	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
)

// JobEnvelope is the wire shape the invoking platform submits: the job
// payload nested under an "input" field.
type JobEnvelope struct {
	Input core.JobRequest `json:"input"`
}

// NatsWorker listens for jobs on a NATS subject, runs each through the job
// handler, and replies with the response JSON. Jobs on one worker are
// processed sequentially; concurrency comes from running more instances.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	handler        core.JobHandler
	jobTimeout     time.Duration
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker. The jobTimeout
// bounds one whole job: synthesis, encoding and upload.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	handler core.JobHandler,
	jobTimeout time.Duration,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		handler:        handler,
		jobTimeout:     jobTimeout,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	response := w.runJob(ctx, msg.Data)

	replyErr := w.respond(msg, response)
	if replyErr != nil {
		w.log.Error("Failed to reply on subject %s: %v", w.subject, replyErr)
	}
}

// runJob decodes the envelope and hands the job to the handler. A payload
// that cannot be decoded never reaches the handler; it is answered with an
// error-shaped response directly, so the caller always gets well-formed JSON.
func (w *NatsWorker) runJob(ctx context.Context, payload []byte) core.Response {
	var envelope JobEnvelope

	err := json.Unmarshal(payload, &envelope)
	if err != nil {
		w.log.Error("Failed to decode job envelope: %v", err)

		return core.Response{
			Success:        false,
			AudioURL:       "",
			Error:          fmt.Sprintf("invalid job payload: %v", err),
			Duration:       0,
			Voice:          "",
			TextLength:     0,
			GenerationTime: 0,
			UploadTime:     0,
			Format:         "",
			SampleRate:     0,
		}
	}

	return w.handler.Handle(ctx, envelope.Input)
}

// respond marshals the response and replies to the request message.
func (w *NatsWorker) respond(msg *nats.Msg, response core.Response) error {
	replyData, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish response: %w", err)
	}

	return nil
}
