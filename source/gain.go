// SPDX-License-Identifier: EPL-2.0

package source

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/ik5/audstudio/utils"
)

// Gain is the amplitude stage shared by both source kinds. Muting overrides
// the multiplier without forgetting the volume.
type Gain struct {
	mu     sync.Mutex
	volume float64
	muted  bool
}

func NewGain(volume float64) *Gain {
	return &Gain{volume: utils.Clamp(volume, 0, 1)}
}

func (g *Gain) Volume() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.volume
}

// SetVolume clamps v to [0,1] and returns the stored value. A positive
// volume clears mute.
func (g *Gain) SetVolume(v float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.volume = utils.Clamp(v, 0, 1)
	if g.volume > 0 {
		g.muted = false
	}
	return g.volume
}

func (g *Gain) Muted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.muted
}

// ToggleMute flips the mute flag and returns the new value.
func (g *Gain) ToggleMute() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.muted = !g.muted
	return g.muted
}

// Effective is the multiplier currently applied: 0 when muted.
func (g *Gain) Effective() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.muted {
		return 0
	}
	return g.volume
}

// Wrap puts s behind the gain stage. Changes apply from the next block.
func (g *Gain) Wrap(s beep.Streamer) beep.Streamer {
	return &gained{gain: g, fx: &effects.Gain{Streamer: s}}
}

type gained struct {
	gain *Gain
	fx   *effects.Gain
}

func (s *gained) Stream(samples [][2]float64) (int, bool) {
	// effects.Gain scales by 1+Gain.
	s.fx.Gain = s.gain.Effective() - 1
	return s.fx.Stream(samples)
}

func (s *gained) Err() error { return s.fx.Err() }
