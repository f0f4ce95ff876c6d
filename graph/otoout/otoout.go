// SPDX-License-Identifier: EPL-2.0

// Package otoout plays a graph through the platform audio device using oto.
package otoout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"

	"github.com/ik5/audstudio/graph"
)

const bytesPerFrame = 2 * 4 // stereo float32

var (
	errNotStarted = errors.New("output not started")
	errStarted    = errors.New("output already started")

	// ErrSettingsChanged reports an Open whose settings differ from the
	// ones the process-wide device context was created with.
	ErrSettingsChanged = errors.New("audio device already opened with other settings")
)

// oto allows a single context per process; the first Open's settings hold
// for the life of the process.
var (
	once     sync.Once
	otoCtx   *oto.Context
	openErr  error
	openedAs graph.Settings
)

// Output is a graph.Output backed by an oto player.
type Output struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

// Open satisfies graph.Opener. The device context is created once per
// process and handed back suspended. Later calls must pass the same
// settings or get ErrSettingsChanged.
func Open(s graph.Settings) (graph.Output, error) {
	once.Do(func() {
		openedAs = s
		op := &oto.NewContextOptions{
			SampleRate:   s.SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   s.BufferSize,
		}
		var ready chan struct{}
		otoCtx, ready, openErr = oto.NewContext(op)
		if openErr == nil {
			<-ready
		}
	})
	if openErr != nil {
		return nil, fmt.Errorf("opening audio device: %w", openErr)
	}
	if err := sameSettings(openedAs, s); err != nil {
		return nil, err
	}
	if err := otoCtx.Suspend(); err != nil {
		return nil, fmt.Errorf("suspending audio device: %w", err)
	}

	return &Output{ctx: otoCtx}, nil
}

func sameSettings(have, want graph.Settings) error {
	if have == want {
		return nil
	}
	return fmt.Errorf("%w: opened at %d Hz / %v buffer, asked for %d Hz / %v",
		ErrSettingsChanged, have.SampleRate, have.BufferSize, want.SampleRate, want.BufferSize)
}

func (o *Output) Start(src beep.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return errStarted
	}
	o.player = o.ctx.NewPlayer(&reader{src: src})
	o.player.Play()
	return nil
}

func (o *Output) Suspend() error {
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (o *Output) Resume() error {
	if err := o.ctx.Resume(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Close stops the player. oto contexts live for the whole process, so the
// device itself is only suspended.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return errNotStarted
	}
	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// reader encodes the graph as interleaved little-endian float32 for oto.
type reader struct {
	src     beep.Streamer
	samples [][2]float64
}

func (r *reader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(r.samples) < frames {
		r.samples = make([][2]float64, frames)
	}
	r.samples = r.samples[:frames]

	n, _ := r.src.Stream(r.samples)
	clear(r.samples[n:])

	for i, s := range r.samples {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(s[0])))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(s[1])))
	}

	return frames * bytesPerFrame, nil
}
