// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audstudio/audio"
	"github.com/ik5/audstudio/formats/internal/pcm"
)

const formatPCM = 1

type Decoder struct{}

// Sniff accepts a RIFF container of type WAVE.
func (Decoder) Sniff(header []byte) bool {
	return len(header) >= 12 &&
		bytes.Equal(header[:4], []byte("RIFF")) &&
		bytes.Equal(header[8:12], []byte("WAVE"))
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := pcm.Seekable(r)
	if err != nil {
		return nil, err
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	dec.ReadInfo()

	if dec.WavAudioFormat != formatPCM {
		return nil, ErrUnsupportedCodec
	}

	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, ErrUnsupportedDepth
	}

	channels := int(dec.NumChans)
	if channels == 0 {
		return nil, ErrNoChannels
	}

	return pcm.NewSource(dec, int(dec.SampleRate), channels, depth, true), nil
}
