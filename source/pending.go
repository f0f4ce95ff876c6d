// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"
	"sync"
)

// Pending is the outcome of an Attach that may still be decoding.
type Pending struct {
	gen  uint64
	once sync.Once
	done chan struct{}
	att  *Attached
	err  error
}

func newPending(gen uint64) *Pending {
	return &Pending{gen: gen, done: make(chan struct{})}
}

func (p *Pending) resolve(att *Attached, err error) {
	p.once.Do(func() {
		if att != nil {
			cp := *att
			p.att = &cp
		}
		p.err = err
		close(p.done)
	})
}

// Generation identifies the attach this result belongs to.
func (p *Pending) Generation() uint64 { return p.gen }

// Done is closed once the result is known.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result returns the outcome. It must only be called after Done is closed.
func (p *Pending) Result() (*Attached, error) { return p.att, p.err }

// Wait blocks until the result is known or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Attached, error) {
	select {
	case <-p.done:
		return p.att, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
