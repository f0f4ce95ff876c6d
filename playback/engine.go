// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/ik5/audstudio/graph"
	"github.com/ik5/audstudio/source"
)

const DefaultVolume = 0.7

type options struct {
	log    *slog.Logger
	volume float64
}

type Option func(*options)

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithVolume sets the starting volume, clamped to [0,1].
func WithVolume(v float64) Option {
	return func(o *options) { o.volume = v }
}

// Engine drives the attached source. Its methods are safe for concurrent
// use; they are serialized internally.
type Engine struct {
	mu sync.Mutex

	g       *graph.Context
	gain    *source.Gain
	adapter *source.Adapter
	log     *slog.Logger

	state     State
	hasSource bool
	kind      source.Kind
	id        uuid.UUID
	duration  float64
	closed    bool

	listeners []func(Snapshot)
}

// New builds an engine on g. decode turns encoded bytes into a buffer at the
// graph's sample rate.
func New(g *graph.Context, decode source.DecodeFunc, opts ...Option) *Engine {
	o := options{
		log:    slog.New(slog.DiscardHandler),
		volume: DefaultVolume,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		g:        g,
		gain:     source.NewGain(o.volume),
		log:      o.log.With("component", "playback"),
		duration: math.NaN(),
	}
	e.adapter = source.NewAdapter(g, e.gain, decode,
		source.WithLogger(o.log),
		source.WithOnEnded(e.handleEnded),
	)
	return e
}

// OnChange registers fn to receive a snapshot after every transition. fn is
// called without the engine lock held.
func (e *Engine) OnChange(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners = append(e.listeners, fn)
}

// do runs fn under the lock and then notifies listeners.
func (e *Engine) do(fn func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	before := e.snapshotLocked()
	err := fn()
	snap := e.snapshotLocked()
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	if !sameSnapshot(before, snap) {
		for _, l := range listeners {
			l(snap)
		}
	}
	return err
}

func sameSnapshot(a, b Snapshot) bool {
	sameDuration := a.Duration == b.Duration || (math.IsNaN(a.Duration) && math.IsNaN(b.Duration))
	a.Duration, b.Duration = 0, 0
	return sameDuration && a == b
}

// warn logs and returns a transport no-op.
func (e *Engine) warn(op string, err error) error {
	e.log.Warn("transport operation ignored", "op", op, "reason", err)
	return err
}

// Attach replaces the current source. An external source is ready at once
// and leaves the engine Stopped. Bytes move the engine to Loading until the
// returned Pending resolves.
func (e *Engine) Attach(ctx context.Context, req source.Request) (*source.Pending, error) {
	var p *source.Pending
	err := e.do(func() error {
		e.hasSource = false
		e.id = uuid.Nil
		e.duration = math.NaN()
		e.kind = req.Kind

		var err error
		p, err = e.adapter.Attach(ctx, req)
		if err != nil {
			e.state = Idle
			if IsWarning(err) {
				return e.warn("attach", err)
			}
			e.log.Error("attach failed", "kind", req.Kind, "error", err)
			return err
		}

		if req.Kind == source.External {
			att, _ := p.Result()
			e.adopt(att)
			return nil
		}

		e.state = Loading
		go e.await(p)
		return nil
	})
	return p, err
}

func (e *Engine) AttachMedia(ctx context.Context, h source.MediaHandle) (*source.Pending, error) {
	return e.Attach(ctx, source.Request{Kind: source.External, Media: h})
}

func (e *Engine) AttachBytes(ctx context.Context, data []byte) (*source.Pending, error) {
	return e.Attach(ctx, source.Request{Kind: source.DecodedBytes, Bytes: data})
}

func (e *Engine) adopt(att *source.Attached) {
	e.hasSource = true
	e.kind = att.Kind
	e.id = att.ID
	e.duration = att.Duration
	e.state = Stopped
}

// await applies a decode outcome unless a newer attach took over.
func (e *Engine) await(p *source.Pending) {
	<-p.Done()
	att, err := p.Result()

	_ = e.do(func() error {
		if e.adapter.Generation() != p.Generation() || errors.Is(err, source.ErrSuperseded) {
			return nil
		}
		if err != nil {
			e.state = Idle
			return nil
		}
		e.adopt(att)
		return nil
	})
}

// handleEnded runs when the source of generation gen finishes on its own.
func (e *Engine) handleEnded(gen uint64) {
	_ = e.do(func() error {
		if e.adapter.Generation() != gen || !e.hasSource {
			return nil
		}
		if err := e.adapter.Stop(); err != nil {
			e.log.Debug("rewinding ended source", "error", err)
		}
		e.state = Stopped
		e.log.Info("playback ended", "id", e.id)
		return nil
	})
}

// Play starts or resumes the attached source.
func (e *Engine) Play() error {
	return e.do(func() error {
		return e.playLocked(false)
	})
}

func (e *Engine) playLocked(restart bool) error {
	if !e.g.IsReady() {
		return e.warn("play", ErrNotReady)
	}
	if !e.hasSource {
		return e.warn("play", ErrNoSource)
	}
	if e.state == Playing && !restart {
		return nil
	}

	if e.kind == source.DecodedBytes {
		switch {
		case restart:
			if _, err := e.adapter.Rearm(); err != nil {
				e.log.Error("rearming decoded source", "error", err)
				return err
			}
		case e.adapter.Spent():
			e.log.Error("play on a finished decoded source", "id", e.id)
			return ErrSourceSpent
		}
	}
	if err := e.adapter.Start(); err != nil {
		e.log.Error("starting source", "error", err)
		return err
	}

	e.state = Playing
	return nil
}

// Pause holds an external source. A decoded source is stopped instead and
// ErrPauseIsStop is returned.
func (e *Engine) Pause() error {
	return e.do(e.pauseLocked)
}

func (e *Engine) pauseLocked() error {
	if !e.hasSource {
		return e.warn("pause", ErrNoSource)
	}
	if e.state != Playing {
		return nil
	}

	if e.kind == source.External {
		if err := e.adapter.Pause(); err != nil {
			e.log.Error("pausing source", "error", err)
			return err
		}
		e.state = Paused
		return nil
	}

	if err := e.adapter.Stop(); err != nil {
		return err
	}
	e.state = Stopped
	return e.warn("pause", ErrPauseIsStop)
}

func (e *Engine) TogglePlayPause() error {
	return e.do(func() error {
		if e.state == Playing {
			return e.pauseLocked()
		}
		return e.playLocked(false)
	})
}

// Stop halts playback and rewinds to 0.
func (e *Engine) Stop() error {
	return e.do(func() error {
		if !e.hasSource {
			return e.warn("stop", ErrNoSource)
		}
		if err := e.adapter.Stop(); err != nil {
			e.log.Error("stopping source", "error", err)
			return err
		}
		e.state = Stopped
		return nil
	})
}

// Replay restarts the attached source from the beginning.
func (e *Engine) Replay() error {
	return e.do(func() error {
		if !e.hasSource {
			return e.warn("replay", ErrNoSource)
		}
		if e.kind == source.External {
			if err := e.adapter.Seek(0); err != nil {
				return err
			}
		}
		return e.playLocked(true)
	})
}

// Seek moves an external source to seconds, clamped to [0, duration].
// Decoded sources return ErrUnsupportedOperation and keep their position.
func (e *Engine) Seek(seconds float64) error {
	return e.do(func() error {
		if !e.hasSource {
			return e.warn("seek", ErrNoSource)
		}
		if e.kind != source.External {
			return e.warn("seek", ErrUnsupportedOperation)
		}

		seconds = max(seconds, 0)
		if d := e.adapter.Duration(); !math.IsNaN(d) {
			seconds = min(seconds, d)
		}
		if err := e.adapter.Seek(seconds); err != nil {
			e.log.Error("seeking source", "error", err)
			return err
		}
		return nil
	})
}

// SetVolume clamps v to [0,1] and returns the stored volume. A positive
// volume unmutes.
func (e *Engine) SetVolume(v float64) float64 {
	var out float64
	_ = e.do(func() error {
		out = e.gain.SetVolume(v)
		return nil
	})
	return out
}

// ToggleMute flips mute and returns the new state. The volume is kept.
func (e *Engine) ToggleMute() bool {
	var muted bool
	_ = e.do(func() error {
		muted = e.gain.ToggleMute()
		return nil
	})
	return muted
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     e.state,
		IsPlaying: e.state == Playing,
		Duration:  math.NaN(),
		Volume:    e.gain.Volume(),
		IsMuted:   e.gain.Muted(),
		HasSource: e.hasSource,
		Kind:      e.kind,
		SourceID:  e.id,
	}
	if !e.hasSource {
		return s
	}

	s.CurrentTime = e.adapter.Position()
	s.Duration = e.duration
	if e.kind == source.External {
		s.Duration = e.adapter.Duration()
		s.Resumable = true
	}
	return s
}

// Forget releases the graph node kept for an external handle. A handle that
// is still attached is detached and the engine returns to Idle.
func (e *Engine) Forget(h source.MediaHandle) error {
	return e.do(func() error {
		if !e.adapter.Forget(h) {
			return nil
		}
		e.hasSource = false
		e.id = uuid.Nil
		e.duration = math.NaN()
		e.state = Idle
		e.log.Info("attached media forgotten")
		return nil
	})
}

// Close detaches the source and rejects later calls. The graph itself
// belongs to its registry.
func (e *Engine) Close() error {
	err := e.do(func() error {
		e.adapter.Detach()
		e.hasSource = false
		e.id = uuid.Nil
		e.duration = math.NaN()
		e.state = Idle
		return nil
	})
	if errors.Is(err, ErrClosed) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("closing engine: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	return nil
}
