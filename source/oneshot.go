// SPDX-License-Identifier: EPL-2.0

package source

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

type shotState int

const (
	shotArmed shotState = iota
	shotRunning
	shotSpent
)

// oneShot plays a decoded buffer exactly once. It renders silence until
// started and reports exhaustion once stopped or finished.
type oneShot struct {
	mu    sync.Mutex
	buf   *beep.Buffer
	st    beep.StreamSeeker
	state shotState
	onEnd func()
}

func newOneShot(buf *beep.Buffer, onEnd func()) *oneShot {
	return &oneShot{
		buf:   buf,
		st:    buf.Streamer(0, buf.Len()),
		onEnd: onEnd,
	}
}

func (s *oneShot) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != shotArmed {
		return ErrSpent
	}
	s.state = shotRunning
	return nil
}

// Stop spends the node. Stopping a spent node is not an error. The end
// callback only fires for natural completion.
func (s *oneShot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = shotSpent
}

func (s *oneShot) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == shotRunning
}

func (s *oneShot) Spent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == shotSpent
}

// Position is the playback offset in seconds.
func (s *oneShot) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != shotRunning {
		return 0
	}
	return s.buf.Format().SampleRate.D(s.st.Position()).Seconds()
}

func (s *oneShot) Duration() float64 {
	return s.buf.Format().SampleRate.D(s.buf.Len()).Seconds()
}

func (s *oneShot) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case shotArmed:
		clear(samples)
		return len(samples), true
	case shotSpent:
		return 0, false
	}

	n, ok := s.st.Stream(samples)
	if ok && n == len(samples) {
		return n, true
	}

	s.state = shotSpent
	if s.onEnd != nil {
		// Runs off the audio goroutine, which holds the graph lock.
		go s.onEnd()
	}
	return n, n > 0
}

func (s *oneShot) Err() error { return s.st.Err() }
