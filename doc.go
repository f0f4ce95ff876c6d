// SPDX-License-Identifier: EPL-2.0

// Package audstudio is an audio session engine: one shared playback graph,
// two kinds of playback source, a uniform transport surface and a live
// spectral feed for visualizers.
//
// # Packages
//
//   - graph holds the process-wide audio context, its analyser tap and the
//     output sink. graph/otoout plays it on a real device.
//   - source attaches either an externally clocked media handle or a fully
//     decoded buffer to the graph, one at a time.
//   - playback is the transport state machine driving the attached source.
//   - visual turns the tap into frames and draws them.
//   - media provides a file-backed media handle with its own clock.
//
// # Decoding
//
// This package wires the format decoders into one registry and decodes a
// byte payload into a stereo buffer at the graph's rate:
//
//	reg := audstudio.NewRegistry()
//	buf, err := audstudio.DecodeBytes(ctx, reg, data, 44100)
//	if errors.Is(err, audio.ErrUnknownFormat) {
//	    // none of WAV, AIFF, Ogg Vorbis or MP3
//	}
//
// NewDecodeFunc binds a registry for use as the engine's decode collaborator:
//
//	eng := playback.New(g, audstudio.NewDecodeFunc(reg))
//
// # Supported Formats
//
//   - WAV (integer PCM 8/16/24/32-bit) via formats/wav
//   - AIFF and AIFF-C via formats/aiff
//   - Ogg Vorbis via formats/vorbis
//   - MP3 via formats/mp3
package audstudio
