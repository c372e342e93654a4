// Package worker_test tests the NATS worker for the kokoro audio service.
package worker_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/audio-studio/kokoro-service/internal/core"
	"github.com/audio-studio/kokoro-service/internal/pipeline"
	"github.com/audio-studio/kokoro-service/internal/worker"
	"github.com/book-expert/logger"

	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSubject = "tts.jobs.test"

// stubSynthesizer returns a fixed second of silence for any text.
type stubSynthesizer struct {
	calls int
}

func (s *stubSynthesizer) Synthesize(
	_ context.Context,
	_, _ string,
	_ float64,
) (core.SynthesisResult, error) {
	s.calls++

	return core.SynthesisResult{
		Samples:    make([]float32, core.SampleRate),
		SampleRate: core.SampleRate,
	}, nil
}

// recordingStore captures the upload and returns a public URL.
type recordingStore struct {
	uploadedKey  string
	uploadedData []byte
}

func (r *recordingStore) Upload(
	_ context.Context,
	key string,
	data []byte,
	_ string,
) (string, error) {
	r.uploadedKey = key
	r.uploadedData = data

	return "https://audio.example.com/" + key, nil
}

func createTestNatsClient(t *testing.T) (*nats.Conn, func()) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	server := test.RunServer(&opts)

	natsConnection, err := nats.Connect(server.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	cleanup := func() {
		server.Shutdown()
		natsConnection.Close()
	}

	return natsConnection, cleanup
}

func startWorker(
	t *testing.T,
	natsConnection *nats.Conn,
	handler core.JobHandler,
) (context.CancelFunc, chan error) {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "worker-test.log")
	require.NoError(t, err)

	workerInstance, err := worker.NewNatsWorker(
		natsConnection,
		testSubject,
		handler,
		30*time.Second,
		testLogger,
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- workerInstance.Run(ctx)
	}()

	// Wait until the worker's subscription is registered and processed by
	// the server, so requests sent by the test cannot race ahead of it.
	require.Eventually(t, func() bool {
		return natsConnection.NumSubscriptions() > 0
	}, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, natsConnection.Flush())

	return cancel, errChan
}

func newTestPipeline(
	t *testing.T,
	synthesizer core.Synthesizer,
	store core.ObjectStore,
) *pipeline.Pipeline {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "pipeline-test.log")
	require.NoError(t, err)

	return pipeline.New(synthesizer, store, testLogger)
}

func TestWorker_EndToEnd(t *testing.T) {
	t.Parallel()

	natsConnection, natsCleanup := createTestNatsClient(t)
	t.Cleanup(natsCleanup)

	synthesizer := &stubSynthesizer{}
	store := &recordingStore{}
	cancel, errChan := startWorker(t, natsConnection, newTestPipeline(t, synthesizer, store))

	defer cancel()

	envelope := []byte(`{"input": {
		"text": "Hello, this is a test.",
		"voice": "af_heart",
		"speed": 1.0,
		"user_id": "123",
		"project_id": "proj_abc",
		"chapter_id": "ch_001"
	}}`)

	replyMsg, err := natsConnection.Request(testSubject, envelope, 5*time.Second)
	require.NoError(t, err, "Request should succeed and receive a reply")

	var response core.Response

	err = json.Unmarshal(replyMsg.Data, &response)
	require.NoError(t, err)

	require.True(t, response.Success, "unexpected failure: %s", response.Error)
	assert.Equal(t, core.AudioFormat, response.Format)
	assert.Equal(t, core.SampleRate, response.SampleRate)
	assert.Equal(t, "af_heart", response.Voice)
	assert.Equal(t, 22, response.TextLength)
	assert.True(
		t,
		strings.HasSuffix(
			response.AudioURL,
			"kokoro_audio/123/project_proj_abc_chapter_ch_001.wav",
		),
		"unexpected audio URL: %s",
		response.AudioURL,
	)

	assert.Equal(t, 1, synthesizer.calls)
	assert.Equal(t, "kokoro_audio/123/project_proj_abc_chapter_ch_001.wav", store.uploadedKey)
	assert.Equal(t, "RIFF", string(store.uploadedData[0:4]))

	cancel()

	shutdownErr := <-errChan
	assert.NoError(t, shutdownErr, "worker.Run should not error on graceful shutdown")
}

func TestWorker_InvalidEnvelope(t *testing.T) {
	t.Parallel()

	natsConnection, natsCleanup := createTestNatsClient(t)
	t.Cleanup(natsCleanup)

	synthesizer := &stubSynthesizer{}
	store := &recordingStore{}
	cancel, _ := startWorker(t, natsConnection, newTestPipeline(t, synthesizer, store))

	defer cancel()

	replyMsg, err := natsConnection.Request(testSubject, []byte("not json"), 5*time.Second)
	require.NoError(t, err)

	var response core.Response

	err = json.Unmarshal(replyMsg.Data, &response)
	require.NoError(t, err)

	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "invalid job payload")
	assert.Equal(t, 0, synthesizer.calls, "bad payloads must not reach the handler")
}

func TestWorker_ValidationErrorStillReplies(t *testing.T) {
	t.Parallel()

	natsConnection, natsCleanup := createTestNatsClient(t)
	t.Cleanup(natsCleanup)

	synthesizer := &stubSynthesizer{}
	store := &recordingStore{}
	cancel, _ := startWorker(t, natsConnection, newTestPipeline(t, synthesizer, store))

	defer cancel()

	envelope := []byte(`{"input": {"text": "", "user_id": "123"}}`)

	replyMsg, err := natsConnection.Request(testSubject, envelope, 5*time.Second)
	require.NoError(t, err)

	var response core.Response

	err = json.Unmarshal(replyMsg.Data, &response)
	require.NoError(t, err)

	assert.False(t, response.Success)
	assert.NotEmpty(t, response.Error)
	assert.Empty(t, response.AudioURL)
	assert.Equal(t, 0, synthesizer.calls)
}
