// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fakes shared by the package tests: synthetic
// sources, WAV fixtures, a media handle with its own clock, and an output
// that is pulled by hand.
//
// It imports neither audio, graph nor source so that their in-package tests
// can use it without cycles.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// MockSource generates audio data for testing. It implements audio.Source.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // per channel
	generated    int // per channel
	waveform     func(sample int, channel int) float32
}

// NewMockSource creates a source producing totalSamples frames from waveform.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// Reset rewinds the source to its first frame.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalSamples-m.generated)
	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalSamples {
		return frames * m.channels, io.EOF
	}
	return frames * m.channels, nil
}

// ErrBroken is returned by a FailingSource.
var ErrBroken = errors.New("audiotest: broken source")

// FailingSource yields good frames up to a point and then fails.
type FailingSource struct {
	*MockSource
	after int
}

// NewFailingSource fails once more than after frames were requested.
func NewFailingSource(sampleRate, channels, after int) *FailingSource {
	return &FailingSource{
		MockSource: NewConstantSource(sampleRate, channels, math.MaxInt32, 0.25),
		after:      after,
	}
}

func (f *FailingSource) ReadSamples(dst []float32) (int, error) {
	if f.generated >= f.after {
		return 0, ErrBroken
	}
	return f.MockSource.ReadSamples(dst[:min(len(dst), (f.after-f.generated)*f.channels)])
}
