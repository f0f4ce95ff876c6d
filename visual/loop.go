// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/fogleman/gg"
)

// LoopConfig sizes the canvas and sets the tick rate.
type LoopConfig struct {
	Width     int
	Height    int
	FrameRate int

	Logger *slog.Logger
}

// Loop renders a Feed onto a canvas at a fixed rate. It is started once and
// stopped once; the latest canvas can be read at any time.
type Loop struct {
	mu       sync.Mutex
	feed     *Feed
	renderer Renderer
	dc       *gg.Context
	last     Frame
	ticks    uint64

	interval time.Duration
	log      *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewLoop(feed *Feed, r Renderer, cfg LoopConfig) (*Loop, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FrameRate <= 0 {
		return nil, ErrInvalidCanvas
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	l := &Loop{
		feed:     feed,
		dc:       gg.NewContext(cfg.Width, cfg.Height),
		interval: time.Second / time.Duration(cfg.FrameRate),
		log:      log.With("component", "visual"),
		done:     make(chan struct{}),
	}
	l.SetRenderer(r)
	return l, nil
}

// SetRenderer switches the renderer and the feed mode it expects.
func (l *Loop) SetRenderer(r Renderer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.renderer = r
	l.feed.SetMode(r.Mode())
}

func (l *Loop) Renderer() Renderer {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.renderer
}

// Ticks counts rendered frames.
func (l *Loop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.ticks
}

// Tick clears the canvas and, while the feed is active, draws the next
// frame.
func (l *Loop) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.dc.SetColor(transparent)
	l.dc.Clear()

	active := l.feed.Active()
	frame := l.feed.Next()
	l.last = append(l.last[:0], frame...)
	if active {
		l.renderer.Draw(l.dc, frame)
	}
	l.ticks++
}

// Start runs Tick on a ticker until ctx is done or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	err := ErrAlreadyStarted
	l.startOnce.Do(func() {
		err = nil
		ctx, l.cancel = context.WithCancel(ctx)
		go l.run(ctx)
		l.log.Info("visual loop started", "interval", l.interval, "renderer", l.Renderer().Name())
	})
	return err
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Tick()
		}
	}
}

// Stop cancels the loop and waits for it to exit. Later calls return at
// once, as does a Stop on a loop that never started.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		started := true
		l.startOnce.Do(func() { started = false })
		if !started {
			return
		}
		l.cancel()
		<-l.done
		l.log.Info("visual loop stopped")
	})
}

// Image returns a copy of the current canvas.
func (l *Loop) Image() *image.RGBA {
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.dc.Image()
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}

// EncodePNG writes the current canvas. A non-nil r different from the
// loop's renderer draws on a scratch canvas: from the last frame when both
// read the same mode, from a fresh read in r's mode otherwise.
func (l *Loop) EncodePNG(w io.Writer, r Renderer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dc := l.dc
	if r != nil && r.Name() != l.renderer.Name() {
		dc = gg.NewContext(l.dc.Width(), l.dc.Height())
		switch {
		case !l.feed.Active():
		case r.Mode() != l.renderer.Mode():
			r.Draw(dc, l.feed.Read(r.Mode()))
		case len(l.last) > 0:
			r.Draw(dc, l.last)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding canvas: %w", err)
	}
	return nil
}
