// SPDX-License-Identifier: EPL-2.0

package source

import (
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
)

func TestGain_SetVolumeClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{in: -1, want: 0},
		{in: 0, want: 0},
		{in: 0.3, want: 0.3},
		{in: 1, want: 1},
		{in: 5, want: 1},
	}

	for _, tt := range tests {
		g := NewGain(0.5)
		if got := g.SetVolume(tt.in); got != tt.want {
			t.Errorf("SetVolume(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got := g.Effective(); got != tt.want {
			t.Errorf("Effective() after SetVolume(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGain_MuteKeepsVolume(t *testing.T) {
	t.Parallel()

	g := NewGain(0.42)

	if !g.ToggleMute() {
		t.Fatal("ToggleMute() = false, want true")
	}
	if g.Effective() != 0 {
		t.Errorf("Effective() while muted = %v, want 0", g.Effective())
	}
	if g.Volume() != 0.42 {
		t.Errorf("Volume() while muted = %v, want 0.42", g.Volume())
	}

	if g.ToggleMute() {
		t.Fatal("ToggleMute() = true, want false")
	}
	if g.Effective() != 0.42 {
		t.Errorf("Effective() after unmute = %v, want 0.42", g.Effective())
	}
}

func TestGain_PositiveVolumeUnmutes(t *testing.T) {
	t.Parallel()

	g := NewGain(0.5)
	g.ToggleMute()

	g.SetVolume(0)
	if !g.Muted() {
		t.Error("SetVolume(0) cleared mute")
	}

	g.SetVolume(0.8)
	if g.Muted() {
		t.Error("SetVolume(0.8) left mute on")
	}
}

func TestGain_Wrap(t *testing.T) {
	t.Parallel()

	g := NewGain(0.5)
	s := g.Wrap(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.8, -0.8}
		}
		return len(samples), true
	}))

	samples := make([][2]float64, 4)
	s.Stream(samples)
	if math.Abs(samples[0][0]-0.4) > 1e-9 || math.Abs(samples[0][1]+0.4) > 1e-9 {
		t.Errorf("gained sample = %v, want [0.4 -0.4]", samples[0])
	}

	g.ToggleMute()
	s.Stream(samples)
	if samples[3] != [2]float64{0, 0} {
		t.Errorf("muted sample = %v, want silence", samples[3])
	}
}
