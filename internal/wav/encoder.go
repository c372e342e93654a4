// Package wav serializes raw audio samples into a WAV container.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// PCM parameters for the container. The engine emits mono float frames which
// are quantized to 16-bit little-endian PCM.
const (
	channels       = 1
	bytesPerSample = 2
	bitsPerSample  = bytesPerSample * 8

	headerSize   = 44
	fmtChunkSize = 16
	pcmFormat    = 1
)

// Static errors.
var (
	ErrNoSamples         = errors.New("no samples to encode")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// Encode wraps the given samples in a 16-bit PCM mono WAV container.
// The output is deterministic: the same samples and sample rate always
// produce byte-identical results, so no metadata beyond the format header
// is embedded.
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}

	dataLen := len(samples) * bytesPerSample
	fileLen := headerSize - 8 + dataLen

	buf := &bytes.Buffer{}
	buf.Grow(headerSize + dataLen)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fileLen))
	buf.WriteString("WAVE")

	// fmt subchunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	_ = binary.Write(buf, binary.LittleEndian, uint16(pcmFormat))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))

	byteRate := sampleRate * channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))

	blockAlign := channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	// data subchunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))

	for _, sample := range samples {
		_ = binary.Write(buf, binary.LittleEndian, quantize(sample))
	}

	return buf.Bytes(), nil
}

// quantize converts a float frame in [-1.0, 1.0] to 16-bit PCM, clipping
// values outside that range.
func quantize(sample float32) int16 {
	scaled := float64(sample) * float64(math.MaxInt16)

	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}

	if scaled < math.MinInt16 {
		return math.MinInt16
	}

	return int16(scaled)
}
