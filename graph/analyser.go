// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/ik5/audstudio/utils"
)

// Analyser is the frequency-analysis tap. It passes audio through untouched
// and keeps the last FFTSize mono samples for inspection.
//
// Frequency data follows the usual analyser-node rules: Blackman window,
// magnitude normalised by the window size, exponential smoothing between
// reads, then decibels mapped linearly from [MinDecibels, MaxDecibels] onto
// 0..255.
type Analyser struct {
	mu sync.Mutex

	size      int
	smoothing float64
	minDB     float64
	maxDB     float64

	ring []float64
	pos  int

	fft      *fourier.FFT
	window   []float64
	scratch  []float64
	coeffs   []complex128
	smoothed []float64
}

func validFFTSize(n int) bool {
	return n >= 32 && n <= 32768 && n&(n-1) == 0
}

// NewAnalyser builds a tap with the given transform window.
func NewAnalyser(fftSize int, smoothing, minDB, maxDB float64) (*Analyser, error) {
	if !validFFTSize(fftSize) {
		return nil, ErrInvalidFFTSize
	}

	win := make([]float64, fftSize)
	for i := range win {
		win[i] = 1
	}
	window.Blackman(win)

	return &Analyser{
		size:      fftSize,
		smoothing: utils.Clamp(smoothing, 0, 1),
		minDB:     minDB,
		maxDB:     maxDB,
		ring:      make([]float64, fftSize),
		fft:       fourier.NewFFT(fftSize),
		window:    win,
		scratch:   make([]float64, fftSize),
		coeffs:    make([]complex128, fftSize/2+1),
		smoothed:  make([]float64, fftSize/2),
	}, nil
}

// FFTSize is the transform window in samples.
func (a *Analyser) FFTSize() int { return a.size }

// FrequencyBinCount is half the transform window.
func (a *Analyser) FrequencyBinCount() int { return a.size / 2 }

// write records a block of stereo samples as their mono mix.
func (a *Analyser) write(samples [][2]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range samples {
		a.ring[a.pos] = (s[0] + s[1]) / 2
		a.pos = (a.pos + 1) % a.size
	}
}

// chronological copies the last n samples, oldest first, into dst.
func (a *Analyser) chronological(dst []float64) {
	n := len(dst)
	start := (a.pos - n + a.size) % a.size
	for i := range dst {
		dst[i] = a.ring[(start+i)%a.size]
	}
}

// ByteFrequencyData fills dst with the current spectrum and returns the
// number of bins written.
func (a *Analyser) ByteFrequencyData(dst []uint8) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.chronological(a.scratch)
	for i := range a.scratch {
		a.scratch[i] *= a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.scratch)

	scale := 1 / float64(a.size)
	for k := range a.smoothed {
		mag := cmplx.Abs(a.coeffs[k]) * scale
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
	}

	n := min(len(dst), len(a.smoothed))
	for k := range n {
		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		dst[k] = utils.ScaleToByte(db, a.minDB, a.maxDB)
	}

	return n
}

// ByteTimeDomainData fills dst with the most recent waveform, 128 being the
// zero crossing, and returns the number of samples written.
func (a *Analyser) ByteTimeDomainData(dst []uint8) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := min(len(dst), a.size)
	tail := a.scratch[:n]
	a.chronological(tail)
	for i, v := range tail {
		dst[i] = utils.SampleToByte(v)
	}

	return n
}
