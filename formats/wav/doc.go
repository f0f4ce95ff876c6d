// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE PCM files through github.com/go-audio/wav
// and writes 16-bit PCM files.
//
// Integer PCM at 8, 16, 24 and 32 bits is accepted, with any channel count
// and sample rate. Files are decoded from an io.ReadSeeker; other readers are
// buffered in memory first.
//
//	src, err := wav.Decoder{}.Decode(bytes.NewReader(data))
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// WriteWAV16 produces a canonical 44-byte-header file:
//
//	wav.WriteWAV16(f, 44100, 2, samples)
package wav
