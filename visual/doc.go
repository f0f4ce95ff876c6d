// SPDX-License-Identifier: EPL-2.0

// Package visual turns the graph's analyser tap into frames and draws them.
//
// A Feed pulls one Frame per call into a single reused buffer. Frames is an
// endless iterator over the same buffer, so a frame is only valid until the
// next pull:
//
//	feed := visual.NewFeed(gctx.Tap(), visual.Frequency, eng.Snapshot().IsPlaying)
//	for frame := range feed.Frames() {
//	    draw(frame)
//	}
//
// A Loop drives a Feed at a fixed rate and renders each frame with one of the
// Bars, Waveform or Circles renderers onto a github.com/fogleman/gg canvas.
// When the feed is inactive the loop keeps ticking and only clears the
// canvas, so playback can resume without restarting it.
package visual
