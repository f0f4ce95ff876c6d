// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
)

// Output is the audio sink. Implementations pull the graph from their own
// goroutine once started and are returned by an Opener in a suspended state.
type Output interface {
	Start(src beep.Streamer) error
	Suspend() error
	Resume() error
	Close() error
}

// Settings describe the stream an Opener must provide.
type Settings struct {
	SampleRate int
	BufferSize time.Duration
}

// Opener opens the platform audio output.
type Opener func(Settings) (Output, error)

// Config controls the graph built by a Registry.
type Config struct {
	SampleRate  int
	BufferSize  time.Duration
	FFTSize     int
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64

	Logger *slog.Logger
}

// DefaultConfig mirrors the analyser defaults browsers ship with, with the
// larger 2048-sample window used for the studio visualizer.
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		BufferSize:  100 * time.Millisecond,
		FFTSize:     2048,
		Smoothing:   0.8,
		MinDecibels: -100,
		MaxDecibels: -30,
	}
}

// Registry creates the single Context on first use and returns it afterwards.
// Tests construct their own Registry per case.
type Registry struct {
	mu   sync.Mutex
	open Opener
	cfg  Config
	log  *slog.Logger
	ctx  *Context
}

func NewRegistry(open Opener, cfg Config) *Registry {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		open: open,
		cfg:  cfg,
		log:  log.With("component", "graph"),
	}
}

// Acquire is idempotent: it opens the output on the first call and returns
// the same Context until that Context is closed.
func (r *Registry) Acquire() (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx != nil && r.ctx.State() != Closed {
		return r.ctx, nil
	}
	if r.open == nil {
		return nil, ErrUnsupportedEnvironment
	}

	tap, err := NewAnalyser(r.cfg.FFTSize, r.cfg.Smoothing, r.cfg.MinDecibels, r.cfg.MaxDecibels)
	if err != nil {
		return nil, fmt.Errorf("building analyser: %w", err)
	}

	out, err := r.open(Settings{SampleRate: r.cfg.SampleRate, BufferSize: r.cfg.BufferSize})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedEnvironment, err)
	}

	c := newContext(r.cfg.SampleRate, out, tap, r.log)
	if err := out.Start(c); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("%w: starting output: %w", ErrUnsupportedEnvironment, err)
	}

	r.log.Info("audio context created", "sample_rate", r.cfg.SampleRate, "fft_size", r.cfg.FFTSize)
	r.ctx = c
	return c, nil
}
