// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives the studio is built on.
//
// # Source Interface
//
// Every decoder produces a Source, an interleaved float32 stream:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// # Registry
//
// A Registry maps format keys to decoders. Decoders that implement Sniffer
// take part in content detection, tried in registration order:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	name, dec, ok := reg.Detect(header)
//
// # Resampling and Mixing
//
// Resampler converts between sample rates with cubic interpolation and a
// one-pole low-pass when downsampling. MonoMixer averages channels.
//
// # Handing audio to the graph
//
// Streamer adapts a Source to beep.Streamer, and Collect drains a Source
// into a stereo beep.Buffer at the graph's rate:
//
//	buf, err := audio.Collect(src, 44100)
package audio
