// SPDX-License-Identifier: EPL-2.0

// Package media provides Element, a playback handle that keeps its own
// clock, for use as an external source, and Library, which opens elements
// from files below a single root directory.
package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// DecodeFunc decodes an encoded file into a stereo buffer at sampleRate.
type DecodeFunc func(ctx context.Context, data []byte, sampleRate int) (*beep.Buffer, error)

// Element plays a decoded buffer with pause, seek and an end callback. Its
// position only moves while the graph pulls its output.
type Element struct {
	mu      sync.Mutex
	name    string
	buf     *beep.Buffer
	st      beep.StreamSeeker
	playing bool
	ended   func()
}

func New(name string, buf *beep.Buffer) *Element {
	return &Element{
		name: name,
		buf:  buf,
		st:   buf.Streamer(0, buf.Len()),
	}
}

func (e *Element) Name() string { return e.name }

// Play starts from the current position, or from the start once ended.
func (e *Element) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.Position() >= e.st.Len() {
		if err := e.st.Seek(0); err != nil {
			return fmt.Errorf("rewinding: %w", err)
		}
	}
	e.playing = true
	return nil
}

func (e *Element) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.playing = false
	return nil
}

// Seek moves to seconds, clamped to the buffer.
func (e *Element) Seek(seconds float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rate := e.buf.Format().SampleRate
	frame := rate.N(time.Duration(seconds * float64(time.Second)))
	frame = min(max(frame, 0), e.st.Len())
	if err := e.st.Seek(frame); err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	return nil
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.buf.Format().SampleRate.D(e.st.Position()).Seconds()
}

func (e *Element) Duration() float64 {
	return e.buf.Format().SampleRate.D(e.buf.Len()).Seconds()
}

func (e *Element) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.playing
}

func (e *Element) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ended = fn
}

// Output is the element itself; it renders silence while paused.
func (e *Element) Output() beep.Streamer { return e }

func (e *Element) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing {
		clear(samples)
		return len(samples), true
	}

	n, _ := e.st.Stream(samples)
	clear(samples[n:])
	if n < len(samples) {
		e.playing = false
		if e.ended != nil {
			go e.ended()
		}
	}
	return len(samples), true
}

func (e *Element) Err() error { return e.st.Err() }
