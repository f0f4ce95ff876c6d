// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"

	"github.com/gopxl/beep/v2"
)

// ErrResumeFailed is returned by ManualOutput.Resume when FailResume is set.
var ErrResumeFailed = errors.New("audiotest: resume failed")

// ManualOutput is an output sink that only moves when the test pulls it.
// It satisfies graph.Output.
type ManualOutput struct {
	mu  sync.Mutex
	src beep.Streamer

	FailResume bool

	Started  bool
	Running  bool
	Closed   bool
	Resumes  int
	Suspends int
}

func NewManualOutput() *ManualOutput { return &ManualOutput{} }

func (o *ManualOutput) Start(src beep.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.src = src
	o.Started = true
	return nil
}

func (o *ManualOutput) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Suspends++
	o.Running = false
	return nil
}

func (o *ManualOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Resumes++
	if o.FailResume {
		return ErrResumeFailed
	}
	o.Running = true
	return nil
}

func (o *ManualOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Closed = true
	o.Running = false
	return nil
}

// Pull renders frames samples from the graph in blocks of 512 and returns
// everything that was played.
func (o *ManualOutput) Pull(frames int) [][2]float64 {
	o.mu.Lock()
	src := o.src
	o.mu.Unlock()

	out := make([][2]float64, 0, frames)
	if src == nil {
		return out
	}

	block := make([][2]float64, 512)
	for len(out) < frames {
		n := min(len(block), frames-len(out))
		got, ok := src.Stream(block[:n])
		out = append(out, block[:got]...)
		if !ok || got == 0 {
			break
		}
	}
	return out
}

// Peak returns the largest absolute sample value in samples.
func Peak(samples [][2]float64) float64 {
	peak := 0.0
	for _, s := range samples {
		peak = max(peak, abs(s[0]), abs(s[1]))
	}
	return peak
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
