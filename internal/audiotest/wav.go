// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV encodes interleaved 16-bit samples as a canonical PCM WAV file.
func WAV(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	_ = binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// ToneWAV renders seconds of a sine at freq Hz, amplitude 0.5, on every channel.
func ToneWAV(sampleRate, channels int, seconds, freq float64) []byte {
	frames := int(seconds * float64(sampleRate))
	samples := make([]int16, frames*channels)
	for f := range frames {
		v := int16(0.5 * 32767 * math.Sin(2*math.Pi*freq*float64(f)/float64(sampleRate)))
		for c := range channels {
			samples[f*channels+c] = v
		}
	}
	return WAV(sampleRate, channels, samples)
}

// Garbage is a payload no decoder accepts.
func Garbage() []byte {
	return []byte("this is definitely not an audio file, just some text bytes")
}
