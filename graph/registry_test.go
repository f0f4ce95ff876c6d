// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/ik5/audstudio/internal/audiotest"
)

func newTestRegistry(out *audiotest.ManualOutput) *Registry {
	cfg := DefaultConfig()
	cfg.FFTSize = 256
	return NewRegistry(func(Settings) (Output, error) { return out, nil }, cfg)
}

func constant(level float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{level, level}
		}
		return len(samples), true
	})
}

func TestRegistry_AcquireIsIdempotent(t *testing.T) {
	t.Parallel()

	opens := 0
	out := audiotest.NewManualOutput()
	reg := NewRegistry(func(Settings) (Output, error) {
		opens++
		return out, nil
	}, DefaultConfig())

	first, err := reg.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	second, err := reg.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if first != second {
		t.Error("Acquire() returned two different contexts")
	}
	if opens != 1 {
		t.Errorf("opener called %d times, want 1", opens)
	}
	if !out.Started {
		t.Error("output was not started")
	}
	if first.State() != Suspended {
		t.Errorf("State() = %v, want Suspended", first.State())
	}
}

func TestRegistry_AcquireAfterClose(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(audiotest.NewManualOutput())

	first, err := reg.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := reg.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after Close error = %v", err)
	}
	if second == first {
		t.Error("Acquire() returned the closed context")
	}
}

func TestRegistry_UnsupportedEnvironment(t *testing.T) {
	t.Parallel()

	boom := errors.New("no device")

	tests := []struct {
		name string
		open Opener
	}{
		{name: "no opener", open: nil},
		{name: "open fails", open: func(Settings) (Output, error) { return nil, boom }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRegistry(tt.open, DefaultConfig()).Acquire()
			if !errors.Is(err, ErrUnsupportedEnvironment) {
				t.Errorf("Acquire() error = %v, want ErrUnsupportedEnvironment", err)
			}
		})
	}
}

func TestRegistry_InvalidFFTSize(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.FFTSize = 1000
	_, err := NewRegistry(func(Settings) (Output, error) { return audiotest.NewManualOutput(), nil }, cfg).Acquire()
	if !errors.Is(err, ErrInvalidFFTSize) {
		t.Errorf("Acquire() error = %v, want ErrInvalidFFTSize", err)
	}
}

func TestContext_ResumeOnInteraction(t *testing.T) {
	t.Parallel()

	out := audiotest.NewManualOutput()
	c, err := newTestRegistry(out).Acquire()
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-c.Ready():
		t.Fatal("Ready() closed before resume")
	default:
	}

	if err := c.ResumeOnInteraction(context.Background()); err != nil {
		t.Fatalf("ResumeOnInteraction() error = %v", err)
	}
	if err := c.ResumeOnInteraction(context.Background()); err != nil {
		t.Fatalf("second ResumeOnInteraction() error = %v", err)
	}

	if !c.IsReady() {
		t.Error("IsReady() = false after resume")
	}
	if out.Resumes != 1 {
		t.Errorf("output resumed %d times, want 1", out.Resumes)
	}

	select {
	case <-c.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready() not closed after resume")
	}
}

func TestContext_ResumeFailure(t *testing.T) {
	t.Parallel()

	out := audiotest.NewManualOutput()
	out.FailResume = true
	c, err := newTestRegistry(out).Acquire()
	if err != nil {
		t.Fatal(err)
	}

	if err := c.ResumeOnInteraction(context.Background()); !errors.Is(err, audiotest.ErrResumeFailed) {
		t.Errorf("ResumeOnInteraction() error = %v, want ErrResumeFailed", err)
	}
	if c.State() != Suspended {
		t.Errorf("State() = %v, want Suspended", c.State())
	}
}

func TestContext_SuspendAndClose(t *testing.T) {
	t.Parallel()

	out := audiotest.NewManualOutput()
	c, err := newTestRegistry(out).Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := c.ResumeOnInteraction(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := c.Suspend(); err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	if c.IsReady() {
		t.Error("IsReady() = true after Suspend")
	}
	select {
	case <-c.Ready():
		t.Error("Ready() still closed after Suspend")
	default:
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !out.Closed {
		t.Error("output not closed")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := c.ResumeOnInteraction(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("ResumeOnInteraction() after Close error = %v, want ErrClosed", err)
	}
	if err := c.Suspend(); !errors.Is(err, ErrClosed) {
		t.Errorf("Suspend() after Close error = %v, want ErrClosed", err)
	}
	if err := c.Connect(constant(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect() after Close error = %v, want ErrClosed", err)
	}
}

func TestContext_ConnectOnce(t *testing.T) {
	t.Parallel()

	c, err := newTestRegistry(audiotest.NewManualOutput()).Acquire()
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Connect(constant(0.5)); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := c.Connect(constant(0.5)); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect() error = %v, want ErrAlreadyConnected", err)
	}

	c.Disconnect()
	c.Disconnect()
	if c.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
	if err := c.Connect(constant(0.5)); err != nil {
		t.Errorf("Connect() after Disconnect error = %v", err)
	}
}

func TestContext_StreamFeedsTap(t *testing.T) {
	t.Parallel()

	out := audiotest.NewManualOutput()
	c, err := newTestRegistry(out).Acquire()
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Connect(constant(0.5)); err != nil {
		t.Fatal(err)
	}

	if peak := audiotest.Peak(out.Pull(1024)); peak != 0 {
		t.Errorf("suspended output peak = %v, want silence", peak)
	}

	if err := c.ResumeOnInteraction(context.Background()); err != nil {
		t.Fatal(err)
	}
	if peak := audiotest.Peak(out.Pull(1024)); peak != 0.5 {
		t.Errorf("running output peak = %v, want 0.5", peak)
	}

	wave := make([]uint8, 16)
	c.Tap().ByteTimeDomainData(wave)
	if wave[15] != 192 {
		t.Errorf("tap sample = %d, want 192", wave[15])
	}

	c.Disconnect()
	if peak := audiotest.Peak(out.Pull(1024)); peak != 0 {
		t.Errorf("disconnected output peak = %v, want silence", peak)
	}
}

func TestContext_NodeFor(t *testing.T) {
	t.Parallel()

	c, err := newTestRegistry(audiotest.NewManualOutput()).Acquire()
	if err != nil {
		t.Fatal(err)
	}

	h := audiotest.NewFakeMedia(10)
	first, err := c.NodeFor(h)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.NodeFor(h)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("NodeFor() wrapped the same handle twice")
	}
	if first.Handle() != MediaHandle(h) {
		t.Error("Handle() does not return the wrapped handle")
	}

	c.Release(h)
	c.Release(h)
	third, err := c.NodeFor(h)
	if err != nil {
		t.Fatal(err)
	}
	if third == first {
		t.Error("NodeFor() after Release returned the released node")
	}
}
