// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
)

// StereoFormat is the sample layout used for every buffer handed to the
// audio graph: interleaved stereo, 16-bit precision when encoded.
func StereoFormat(rate int) beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   2,
	}
}

// Streamer adapts a Source to beep.Streamer. Mono input is copied to both
// channels, sources with more than two channels are mixed down to mono first.
type Streamer struct {
	src  Source
	buf  []float32
	err  error
	done bool
}

func NewStreamer(src Source) *Streamer {
	if src.Channels() > 2 {
		src = NewMonoMixer(src)
	}
	return &Streamer{src: src}
}

func (s *Streamer) Err() error { return s.err }

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	if s.done {
		return 0, false
	}

	channels := s.src.Channels()
	need := len(samples) * channels
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	s.buf = s.buf[:need]

	filled := 0
	empty := 0
	for filled < len(samples) && !s.done {
		n, err := s.src.ReadSamples(s.buf[filled*channels:])
		frames := n / channels
		for i := range frames {
			l := s.buf[(filled+i)*channels]
			r := l
			if channels == 2 {
				r = s.buf[(filled+i)*channels+1]
			}
			samples[filled+i] = [2]float64{float64(l), float64(r)}
		}
		filled += frames

		switch {
		case err == io.EOF:
			s.done = true
		case err != nil:
			s.err = fmt.Errorf("%w", err)
			s.done = true
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				s.done = true
			}
		}
	}

	if filled == 0 {
		return 0, false
	}
	return filled, true
}

// Collect drains src into a stereo buffer at rate, resampling when the
// source runs at a different rate.
func Collect(src Source, rate int) (*beep.Buffer, error) {
	if src.SampleRate() <= 0 || src.Channels() <= 0 || rate <= 0 {
		return nil, ErrInvalidFormat
	}

	in := src
	if src.SampleRate() != rate {
		in = NewResampler(src, rate)
	}

	st := NewStreamer(in)
	buf := beep.NewBuffer(StereoFormat(rate))
	buf.Append(st)

	if err := st.Err(); err != nil {
		return nil, fmt.Errorf("collecting samples: %w", err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyStream
	}

	return buf, nil
}
