// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gopxl/beep/v2"
)

// MediaHandle is an externally owned playback handle whose audio can be
// tapped. Handles are used as map keys and must be comparable.
type MediaHandle interface {
	Output() beep.Streamer
}

// MediaNode is the graph node created for a MediaHandle. A handle is wrapped
// at most once per Context.
type MediaNode struct {
	handle MediaHandle
	out    beep.Streamer
}

func (n *MediaNode) Stream(samples [][2]float64) (int, bool) { return n.out.Stream(samples) }
func (n *MediaNode) Err() error                              { return n.out.Err() }

// Handle returns the wrapped handle.
func (n *MediaNode) Handle() MediaHandle { return n.handle }

// Context is the audio graph: input -> tap -> output.
type Context struct {
	mu sync.Mutex

	state Lifecycle
	rate  int
	out   Output
	tap   *Analyser
	input beep.Streamer
	media map[MediaHandle]*MediaNode
	ready chan struct{}

	log *slog.Logger
}

func newContext(rate int, out Output, tap *Analyser, log *slog.Logger) *Context {
	return &Context{
		state: Suspended,
		rate:  rate,
		out:   out,
		tap:   tap,
		media: make(map[MediaHandle]*MediaNode),
		ready: make(chan struct{}),
		log:   log,
	}
}

func (c *Context) State() Lifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// IsReady reports whether the output is running.
func (c *Context) IsReady() bool { return c.State() == Running }

// Ready is closed once the context is running. A later Suspend swaps in a
// fresh channel.
func (c *Context) Ready() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ready
}

func (c *Context) SampleRate() int { return c.rate }

// Tap returns the shared analysis tap.
func (c *Context) Tap() *Analyser { return c.tap }

// ResumeOnInteraction moves a suspended context to running. Call it from a
// user gesture handler. It is a no-op when already running.
func (c *Context) ResumeOnInteraction(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Running:
		c.mu.Unlock()
		return nil
	case Closed:
		c.mu.Unlock()
		return ErrClosed
	}
	out := c.out
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- out.Resume() }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("resuming output: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("resuming output: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return ErrClosed
	}
	if c.state != Running {
		c.state = Running
		close(c.ready)
		c.log.Info("audio context resumed")
	}
	return nil
}

// Suspend pauses the output. The wired input stays connected.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Closed:
		return ErrClosed
	case Suspended:
		return nil
	}
	if err := c.out.Suspend(); err != nil {
		return fmt.Errorf("suspending output: %w", err)
	}
	c.state = Suspended
	c.ready = make(chan struct{})
	c.log.Info("audio context suspended")
	return nil
}

// Close tears the graph down. Every later operation fails with ErrClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return nil
	}
	c.state = Closed
	c.input = nil
	clear(c.media)
	c.log.Info("audio context closed")

	if err := c.out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

// Connect wires node into the tap. Only one node may be connected at a time.
func (c *Context) Connect(node beep.Streamer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return ErrClosed
	}
	if c.input != nil {
		return ErrAlreadyConnected
	}
	c.input = node
	return nil
}

// Disconnect unwires the current node. It is idempotent.
func (c *Context) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = nil
}

// Connected reports whether a node is wired into the tap.
func (c *Context) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input != nil
}

// NodeFor returns the node for h, creating it on first use.
func (c *Context) NodeFor(h MediaHandle) (*MediaNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Closed {
		return nil, ErrClosed
	}
	if n, ok := c.media[h]; ok {
		return n, nil
	}
	n := &MediaNode{handle: h, out: h.Output()}
	c.media[h] = n
	return n, nil
}

// Release forgets the node created for h. It is idempotent.
func (c *Context) Release(h MediaHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.media, h)
}

// Stream renders the next block for the output. Without a running state or
// a wired input the block is silence; the tap sees exactly what the output
// plays.
func (c *Context) Stream(samples [][2]float64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	if c.state == Running && c.input != nil {
		n, _ = c.input.Stream(samples)
	}
	clear(samples[n:])
	c.tap.write(samples)

	return len(samples), true
}

func (c *Context) Err() error { return nil }
