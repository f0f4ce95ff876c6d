// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audstudio/utils"
)

// maxEmptyReads bounds how often a source may answer (0, nil) before it is
// treated as exhausted.
const maxEmptyReads = 64

// Resampler streams from src to a target sample rate using cubic
// interpolation. It works on interleaved samples and preserves the channel
// count. Downsampling runs the input through a one-pole low-pass first.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window holds frames t-1, t0, t+1, t+2; output lies between t0 and t+1.
	window [4][]float32
	real   [4]bool
	primed bool
	eof    bool
	pos    float64

	in []float32

	lowpass bool
	seeded  bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    ratio,
		channels: channels,
		in:       make([]float32, channels),
		lowpass:  ratio > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls a single frame from src into r.in.
func (r *Resampler) readFrame() (bool, error) {
	if r.eof {
		return false, nil
	}

	for range maxEmptyReads {
		n, err := r.src.ReadSamples(r.in)
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
		if n == r.channels {
			if r.lowpass {
				if !r.seeded {
					copy(r.state, r.in)
					r.seeded = true
				}
				for c := range r.in {
					r.in[c] = r.alpha*r.in[c] + (1-r.alpha)*r.state[c]
					r.state[c] = r.in[c]
				}
			}
			return true, nil
		}
		if r.eof {
			return false, nil
		}
	}

	r.eof = true
	return false, nil
}

// push shifts the window left and appends the next frame, repeating the last
// one as padding once the source is drained.
func (r *Resampler) push() error {
	last := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.real[:], r.real[1:])
	r.window[3] = last

	ok, err := r.readFrame()
	if err != nil {
		return err
	}
	if ok {
		copy(r.window[3], r.in)
	} else {
		copy(r.window[3], r.window[2])
	}
	r.real[3] = ok

	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.readFrame()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.in)
	copy(r.window[1], r.in)
	r.real[1] = true

	for _, i := range []int{2, 3} {
		ok, err := r.readFrame()
		if err != nil {
			return err
		}
		if ok {
			copy(r.window[i], r.in)
		} else {
			copy(r.window[i], r.window[i-1])
		}
		r.real[i] = ok
	}

	r.primed = true
	return nil
}

// ReadSamples produces samples at the target rate. len(dst) must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels == 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1 {
			r.pos--
			if err := r.push(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.real[1] {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
