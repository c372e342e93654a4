// Package wav_test tests the WAV encoder.
package wav_test

import (
	"encoding/binary"
	"testing"

	"github.com/audio-studio/kokoro-service/internal/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 24000

func TestEncode_HeaderLayout(t *testing.T) {
	t.Parallel()

	samples := []float32{0, 0.5, -0.5, 1.0}

	encoded, err := wav.Encode(samples, testSampleRate)
	require.NoError(t, err)

	require.Len(t, encoded, 44+len(samples)*2)

	assert.Equal(t, "RIFF", string(encoded[0:4]))
	assert.Equal(t, "WAVE", string(encoded[8:12]))
	assert.Equal(t, "fmt ", string(encoded[12:16]))
	assert.Equal(t, "data", string(encoded[36:40]))

	// PCM format, mono, 16-bit.
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(encoded[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(encoded[22:24]))
	assert.Equal(t, uint32(testSampleRate), binary.LittleEndian.Uint32(encoded[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(encoded[34:36]))
	assert.Equal(
		t,
		uint32(len(samples)*2),
		binary.LittleEndian.Uint32(encoded[40:44]),
	)
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	samples := []float32{0.1, -0.2, 0.3, -0.4, 0.5}

	first, err := wav.Encode(samples, testSampleRate)
	require.NoError(t, err)

	second, err := wav.Encode(samples, testSampleRate)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same samples and rate must produce identical bytes")
}

func TestEncode_ClipsOutOfRangeSamples(t *testing.T) {
	t.Parallel()

	encoded, err := wav.Encode([]float32{2.0, -2.0}, testSampleRate)
	require.NoError(t, err)

	high := int16(binary.LittleEndian.Uint16(encoded[44:46]))
	low := int16(binary.LittleEndian.Uint16(encoded[46:48]))

	assert.Equal(t, int16(32767), high)
	assert.Equal(t, int16(-32768), low)
}

func TestEncode_EmptySamples(t *testing.T) {
	t.Parallel()

	_, err := wav.Encode(nil, testSampleRate)
	require.ErrorIs(t, err, wav.ErrNoSamples)
}

func TestEncode_InvalidSampleRate(t *testing.T) {
	t.Parallel()

	_, err := wav.Encode([]float32{0.1}, 0)
	require.ErrorIs(t, err, wav.ErrInvalidSampleRate)

	_, err = wav.Encode([]float32{0.1}, -24000)
	require.ErrorIs(t, err, wav.ErrInvalidSampleRate)
}
