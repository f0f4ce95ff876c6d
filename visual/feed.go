// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"iter"
	"sync"
)

// Frame is one snapshot of the tap, half the transform window long. It is
// refilled in place on every pull and must not be retained.
type Frame []uint8

// Mode selects which view of the tap a Feed reads.
type Mode int

const (
	// Frequency reads magnitudes per frequency bin.
	Frequency Mode = iota
	// TimeDomain reads the waveform, 128 being the zero crossing.
	TimeDomain
)

func (m Mode) String() string {
	if m == TimeDomain {
		return "time-domain"
	}
	return "frequency"
}

// Tap is the analyser a Feed reads from.
type Tap interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []uint8) int
	ByteTimeDomainData(dst []uint8) int
}

// Feed pulls frames from a tap into a fixed buffer.
type Feed struct {
	mu     sync.Mutex
	tap    Tap
	mode   Mode
	active func() bool
	buf    Frame
}

// NewFeed reads tap in mode. While active reports false, pulls yield a
// cleared frame. A nil active means always active.
func NewFeed(tap Tap, mode Mode, active func() bool) *Feed {
	return &Feed{
		tap:    tap,
		mode:   mode,
		active: active,
		buf:    make(Frame, tap.FrequencyBinCount()),
	}
}

func (f *Feed) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.mode
}

func (f *Feed) SetMode(m Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.mode = m
}

// Active reports whether pulls currently read the tap.
func (f *Feed) Active() bool {
	return f.active == nil || f.active()
}

// Next clears the buffer and refills it from the tap.
func (f *Feed) Next() Frame {
	active := f.Active()

	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.buf)
	if active {
		f.fill(f.mode, f.buf)
	}
	return f.buf
}

// Read takes a one-off frame in m without touching the buffer Next fills.
func (f *Feed) Read(m Mode) Frame {
	out := make(Frame, f.tap.FrequencyBinCount())
	if f.Active() {
		f.fill(m, out)
	}
	return out
}

func (f *Feed) fill(m Mode, dst Frame) {
	switch m {
	case TimeDomain:
		f.tap.ByteTimeDomainData(dst)
	default:
		f.tap.ByteFrequencyData(dst)
	}
}

// Frames yields Next forever. Breaking out of the range ends the sequence;
// ranging again restarts it.
func (f *Feed) Frames() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for {
			if !yield(f.Next()) {
				return
			}
		}
	}
}
