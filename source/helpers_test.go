// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/ik5/audstudio/audio"
	"github.com/ik5/audstudio/graph"
	"github.com/ik5/audstudio/internal/audiotest"
)

const testRate = 8000

// running returns a resumed graph and the output that pulls it.
func running(t *testing.T) (*graph.Context, *audiotest.ManualOutput) {
	t.Helper()

	out := audiotest.NewManualOutput()
	cfg := graph.DefaultConfig()
	cfg.SampleRate = testRate
	cfg.FFTSize = 256

	g, err := graph.NewRegistry(func(graph.Settings) (graph.Output, error) { return out, nil }, cfg).Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := g.ResumeOnInteraction(context.Background()); err != nil {
		t.Fatalf("ResumeOnInteraction() error = %v", err)
	}
	return g, out
}

// constantBuffer is seconds of a constant 0.5 level at testRate.
func constantBuffer(seconds float64) *beep.Buffer {
	buf := beep.NewBuffer(audio.StereoFormat(testRate))
	frames := int(seconds * testRate)
	buf.Append(beep.Take(frames, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.5, 0.5}
		}
		return len(samples), true
	})))
	return buf
}

// fixedDecode decodes every payload to seconds of constant audio.
func fixedDecode(seconds float64) DecodeFunc {
	return func(context.Context, []byte, int) (*beep.Buffer, error) {
		return constantBuffer(seconds), nil
	}
}

// gatedDecode blocks until release is closed or ctx is cancelled.
func gatedDecode(release <-chan struct{}, seconds float64) DecodeFunc {
	return func(ctx context.Context, _ []byte, _ int) (*beep.Buffer, error) {
		select {
		case <-release:
			return constantBuffer(seconds), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func wait(t *testing.T, p *Pending) (*Attached, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	att, err := p.Wait(ctx)
	if err == context.DeadlineExceeded {
		t.Fatal("Pending never resolved")
	}
	return att, err
}
