// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"

	"github.com/ik5/audstudio/graph"
)

// Attached describes a source that is wired into the graph.
type Attached struct {
	ID         uuid.UUID
	Kind       Kind
	Generation uint64
	// Duration in seconds, NaN while an external handle has no metadata.
	Duration float64
}

// current is the adapter's view of the wired source.
type current struct {
	att   Attached
	media MediaHandle
	buf   *beep.Buffer
	shot  *oneShot
}

// Option configures an Adapter.
type Option func(*Adapter)

func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// WithOnEnded registers fn to be called, off the audio goroutine, when the
// source of generation gen reaches its end. Stale generations are filtered
// before fn runs.
func WithOnEnded(fn func(gen uint64)) Option {
	return func(a *Adapter) { a.onEnded = fn }
}

// Adapter owns whichever source is attached to a graph Context.
type Adapter struct {
	mu sync.Mutex

	g      *graph.Context
	gain   *Gain
	decode DecodeFunc
	log    *slog.Logger

	gen     uint64
	cancel  context.CancelFunc
	cur     *current
	onEnded func(gen uint64)
}

func NewAdapter(g *graph.Context, gain *Gain, decode DecodeFunc, opts ...Option) *Adapter {
	a := &Adapter{
		g:      g,
		gain:   gain,
		decode: decode,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("component", "source")
	return a
}

// Gain returns the stage every attached source plays through.
func (a *Adapter) Gain() *Gain { return a.gain }

// Generation increases on every Attach and Detach.
func (a *Adapter) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.gen
}

// Attach detaches the current source, then attaches the requested one. For
// External the returned Pending is already resolved. For DecodedBytes the
// decode runs in the background; the caller's ctx only bounds the
// validation, later calls to Attach or Detach cancel the decode.
func (a *Adapter) Attach(ctx context.Context, req Request) (*Pending, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.detachLocked()
	gen := a.gen

	switch req.Kind {
	case External:
		return a.attachExternal(gen, req.Media)
	case DecodedBytes:
		return a.attachBytes(ctx, gen, req.Bytes)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, req.Kind)
	}
}

func (a *Adapter) attachExternal(gen uint64, h MediaHandle) (*Pending, error) {
	if h == nil {
		return nil, ErrEmptyInput
	}
	if !a.g.IsReady() {
		return nil, graph.ErrNotReady
	}

	node, err := a.g.NodeFor(h)
	if err != nil {
		return nil, fmt.Errorf("wrapping media handle: %w", err)
	}
	if err := a.g.Connect(a.gain.Wrap(node)); err != nil {
		return nil, fmt.Errorf("connecting media handle: %w", err)
	}
	h.OnEnded(func() { a.ended(gen) })

	a.cur = &current{
		att: Attached{
			ID:         uuid.New(),
			Kind:       External,
			Generation: gen,
			Duration:   h.Duration(),
		},
		media: h,
	}
	a.log.Info("external source attached", "id", a.cur.att.ID, "generation", gen)

	p := newPending(gen)
	p.resolve(&a.cur.att, nil)
	return p, nil
}

func (a *Adapter) attachBytes(ctx context.Context, gen uint64, data []byte) (*Pending, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if a.decode == nil {
		return nil, fmt.Errorf("%w: no decoder configured", ErrUnsupportedOperation)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("attaching bytes: %w", err)
	}
	if !a.g.IsReady() {
		return nil, graph.ErrNotReady
	}

	dctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel

	p := newPending(gen)
	rate := a.g.SampleRate()
	go func() {
		buf, err := a.decode(dctx, data, rate)
		a.complete(gen, p, buf, err)
	}()

	a.log.Debug("decode started", "generation", gen, "bytes", len(data))
	return p, nil
}

// complete applies a decode result if gen is still current.
func (a *Adapter) complete(gen uint64, p *Pending, buf *beep.Buffer, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		a.log.Debug("dropping superseded decode", "generation", gen, "current", a.gen)
		p.resolve(nil, ErrSuperseded)
		return
	}
	a.cancel = nil

	if err != nil {
		derr := &DecodeError{Err: err}
		a.log.Error("decode failed", "generation", gen, "error", err)
		p.resolve(nil, derr)
		return
	}

	cur := &current{
		att: Attached{
			ID:         uuid.New(),
			Kind:       DecodedBytes,
			Generation: gen,
		},
		buf: buf,
	}
	if err := a.arm(cur); err != nil {
		p.resolve(nil, err)
		return
	}
	a.cur = cur
	a.log.Info("decoded source attached", "id", cur.att.ID, "generation", gen, "duration", cur.att.Duration)
	p.resolve(&cur.att, nil)
}

// arm builds a fresh one-shot node for cur and wires it.
func (a *Adapter) arm(cur *current) error {
	gen := cur.att.Generation
	shot := newOneShot(cur.buf, func() { a.ended(gen) })
	if err := a.g.Connect(a.gain.Wrap(shot)); err != nil {
		return fmt.Errorf("connecting decoded source: %w", err)
	}
	cur.shot = shot
	cur.att.Duration = shot.Duration()
	return nil
}

func (a *Adapter) ended(gen uint64) {
	a.mu.Lock()
	fn := a.onEnded
	stale := gen != a.gen
	a.mu.Unlock()

	if stale || fn == nil {
		return
	}
	fn(gen)
}

// Detach stops and unwires the current source and cancels an in-flight
// decode. It is idempotent. The graph keeps its node for an external
// handle; see Forget.
func (a *Adapter) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.detachLocked()
}

func (a *Adapter) detachLocked() {
	a.gen++

	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	if a.cur != nil {
		switch a.cur.att.Kind {
		case External:
			a.cur.media.OnEnded(nil)
			if err := a.cur.media.Pause(); err != nil {
				a.log.Debug("pausing detached media", "error", err)
			}
		case DecodedBytes:
			if a.cur.shot != nil {
				a.cur.shot.Stop()
			}
		}
		a.log.Info("source detached", "id", a.cur.att.ID)
		a.cur = nil
	}

	a.g.Disconnect()
}

// Forget drops the graph's node for h. It reports whether h was attached
// and had to be detached first.
func (a *Adapter) Forget(h MediaHandle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	detached := false
	if a.cur != nil && a.cur.media == h {
		a.detachLocked()
		detached = true
	}
	a.g.Release(h)
	return detached
}

// Attached returns the wired source, if any.
func (a *Adapter) Attached() (Attached, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil {
		return Attached{}, false
	}
	return a.cur.att, true
}

// Rearm replaces a spent one-shot node with a fresh one from the retained
// buffer. It starts a new generation.
func (a *Adapter) Rearm() (Attached, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil {
		return Attached{}, ErrNoSource
	}
	if a.cur.att.Kind != DecodedBytes {
		return Attached{}, ErrUnsupportedOperation
	}

	if a.cur.shot != nil {
		a.cur.shot.Stop()
	}
	a.g.Disconnect()
	a.gen++

	cur := &current{
		att: Attached{
			ID:         a.cur.att.ID,
			Kind:       DecodedBytes,
			Generation: a.gen,
		},
		buf: a.cur.buf,
	}
	if err := a.arm(cur); err != nil {
		a.cur = nil
		return Attached{}, err
	}
	a.cur = cur
	return cur.att, nil
}

// Start begins playback of the current source.
func (a *Adapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil {
		return ErrNoSource
	}
	switch a.cur.att.Kind {
	case External:
		if err := a.cur.media.Play(); err != nil {
			return fmt.Errorf("playing media: %w", err)
		}
		return nil
	default:
		if a.cur.shot == nil {
			return ErrSpent
		}
		return a.cur.shot.Start()
	}
}

// Pause holds an external handle at its position. Decoded sources have no
// pause and report ErrUnsupportedOperation.
func (a *Adapter) Pause() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil {
		return ErrNoSource
	}
	if a.cur.att.Kind != External {
		return ErrUnsupportedOperation
	}
	if err := a.cur.media.Pause(); err != nil {
		return fmt.Errorf("pausing media: %w", err)
	}
	return nil
}

// Stop halts the current source and rewinds an external handle to 0. A
// decoded source's node is unwired and dropped; only Rearm can play the
// retained buffer again.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil {
		return ErrNoSource
	}
	switch a.cur.att.Kind {
	case External:
		if err := a.cur.media.Pause(); err != nil {
			return fmt.Errorf("pausing media: %w", err)
		}
		if err := a.cur.media.Seek(0); err != nil {
			return fmt.Errorf("rewinding media: %w", err)
		}
	default:
		if a.cur.shot != nil {
			a.cur.shot.Stop()
			a.cur.shot = nil
			a.g.Disconnect()
			a.log.Debug("decoded node released", "id", a.cur.att.ID)
		}
	}
	return nil
}

// Seek moves an external handle. Decoded sources report
// ErrUnsupportedOperation.
func (a *Adapter) Seek(seconds float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil {
		return ErrNoSource
	}
	if a.cur.att.Kind != External {
		return ErrUnsupportedOperation
	}
	if err := a.cur.media.Seek(seconds); err != nil {
		return fmt.Errorf("seeking media: %w", err)
	}
	return nil
}

// Position is the current playback offset in seconds.
func (a *Adapter) Position() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.cur == nil:
		return 0
	case a.cur.att.Kind == External:
		return a.cur.media.CurrentTime()
	case a.cur.shot == nil:
		return 0
	default:
		return a.cur.shot.Position()
	}
}

// Duration in seconds; NaN when unknown or nothing is attached.
func (a *Adapter) Duration() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.cur == nil:
		return math.NaN()
	case a.cur.att.Kind == External:
		return a.cur.media.Duration()
	default:
		return a.cur.att.Duration
	}
}

// Spent reports whether the current decoded source has played or been
// stopped and can no longer start without Rearm.
func (a *Adapter) Spent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cur == nil || a.cur.att.Kind != DecodedBytes {
		return false
	}
	return a.cur.shot == nil || a.cur.shot.Spent()
}
