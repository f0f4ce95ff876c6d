// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
)

// ErrPlayRejected is returned by FakeMedia.Play when RejectPlay is set.
var ErrPlayRejected = errors.New("audiotest: play rejected")

// FakeMedia is an externally clocked media handle. Its time only moves when
// the test calls Advance or Seek; its output is a constant level while
// playing.
type FakeMedia struct {
	mu sync.Mutex

	current  float64
	duration float64
	playing  bool
	ended    func()
	level    float64

	RejectPlay bool

	PlayCalls  int
	PauseCalls int
	SeekCalls  int
}

// NewFakeMedia returns a paused handle. Pass math.NaN() for a handle whose
// metadata has not loaded yet.
func NewFakeMedia(duration float64) *FakeMedia {
	return &FakeMedia{duration: duration, level: 0.5}
}

func (m *FakeMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PlayCalls++
	if m.RejectPlay {
		return ErrPlayRejected
	}
	m.playing = true
	return nil
}

func (m *FakeMedia) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PauseCalls++
	m.playing = false
	return nil
}

func (m *FakeMedia) Seek(seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SeekCalls++
	m.current = seconds
	return nil
}

func (m *FakeMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

func (m *FakeMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.duration
}

// SetDuration simulates metadata arriving.
func (m *FakeMedia) SetDuration(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.duration = d
}

func (m *FakeMedia) OnEnded(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ended = fn
}

func (m *FakeMedia) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.playing
}

// Advance moves the clock forward. Reaching the duration stops playback and
// fires the ended handler.
func (m *FakeMedia) Advance(seconds float64) {
	m.mu.Lock()
	m.current += seconds
	var fire func()
	if !math.IsNaN(m.duration) && m.current >= m.duration {
		m.current = m.duration
		m.playing = false
		fire = m.ended
	}
	m.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// End fires the ended handler as if playback reached the end.
func (m *FakeMedia) End() {
	m.mu.Lock()
	m.playing = false
	if !math.IsNaN(m.duration) {
		m.current = m.duration
	}
	fire := m.ended
	m.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// Output returns the handle's audio: a constant level while playing,
// silence otherwise. The streamer is rebuilt on every call, so callers should wrap it once.
func (m *FakeMedia) Output() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		m.mu.Lock()
		level := 0.0
		if m.playing {
			level = m.level
		}
		m.mu.Unlock()

		for i := range samples {
			samples[i] = [2]float64{level, level}
		}
		return len(samples), true
	})
}
