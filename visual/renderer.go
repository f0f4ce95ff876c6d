// SPDX-License-Identifier: EPL-2.0

package visual

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
)

var (
	cyan        = color.RGBA{R: 0x06, G: 0xb6, B: 0xd4, A: 0xff}
	violet      = color.RGBA{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff}
	pink        = color.RGBA{R: 0xec, G: 0x48, B: 0x99, A: 0xff}
	transparent = color.RGBA{}
)

// Renderer draws one frame onto a cleared canvas.
type Renderer interface {
	Name() string
	// Mode is the tap view the renderer expects.
	Mode() Mode
	Draw(dc *gg.Context, f Frame)
}

// Renderers lists the built-in renderers in display order.
func Renderers() []Renderer {
	return []Renderer{Bars{}, Waveform{}, Circles{}}
}

// Names lists the built-in renderer names.
func Names() []string {
	out := make([]string, 0, 3)
	for _, r := range Renderers() {
		out = append(out, r.Name())
	}
	return out
}

// ByName finds a built-in renderer, ignoring case.
func ByName(name string) (Renderer, error) {
	for _, r := range Renderers() {
		if strings.EqualFold(r.Name(), name) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
}

// Bars draws the spectrum as bars 2.5 slots wide with a one pixel gap,
// shaded cyan to violet to pink from top to bottom of each bar.
type Bars struct{}

func (Bars) Name() string { return "bars" }
func (Bars) Mode() Mode   { return Frequency }

func (Bars) Draw(dc *gg.Context, f Frame) {
	if len(f) == 0 {
		return
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	barWidth := w / float64(len(f)) * 2.5

	x := 0.0
	for _, v := range f {
		if x >= w {
			break
		}
		barHeight := float64(v) / 255 * h
		if barHeight > 0 {
			grad := gg.NewLinearGradient(0, h-barHeight, 0, h)
			grad.AddColorStop(0, cyan)
			grad.AddColorStop(0.5, violet)
			grad.AddColorStop(1, pink)

			dc.SetFillStyle(grad)
			dc.DrawRectangle(x, h-barHeight, barWidth, barHeight)
			dc.Fill()
		}
		x += barWidth + 1
	}
}

// Waveform draws a cyan polyline, 128 mapping to the vertical middle.
type Waveform struct{}

func (Waveform) Name() string { return "waveform" }
func (Waveform) Mode() Mode   { return TimeDomain }

func (Waveform) Draw(dc *gg.Context, f Frame) {
	if len(f) == 0 {
		return
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	slice := w / float64(len(f))

	dc.SetColor(cyan)
	dc.SetLineWidth(2)
	for i, v := range f {
		x := float64(i) * slice
		y := float64(v) / 128 * h / 2
		if i == 0 {
			dc.MoveTo(x, y)
			continue
		}
		dc.LineTo(x, y)
	}
	dc.LineTo(w, h/2)
	dc.Stroke()
}

// Circles places one dot per bin around the centre, the distance
// proportional to the magnitude.
type Circles struct{}

func (Circles) Name() string { return "circles" }
func (Circles) Mode() Mode   { return Frequency }

func (Circles) Draw(dc *gg.Context, f Frame) {
	if len(f) == 0 {
		return
	}
	cx, cy := float64(dc.Width())/2, float64(dc.Height())/2
	maxRadius := math.Max(math.Min(cx, cy)-20, 0)

	for i, v := range f {
		radius := float64(v) / 255 * maxRadius
		angle := float64(i) / float64(len(f)) * 2 * math.Pi
		x := cx + math.Cos(angle)*radius
		y := cy + math.Sin(angle)*radius

		grad := gg.NewRadialGradient(x, y, 0, x, y, 5)
		grad.AddColorStop(0, cyan)
		grad.AddColorStop(1, transparent)

		dc.SetFillStyle(grad)
		dc.DrawCircle(x, y, 3)
		dc.Fill()
	}
}
