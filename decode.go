// SPDX-License-Identifier: EPL-2.0

package audstudio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gopxl/beep/v2"

	"github.com/ik5/audstudio/audio"
	"github.com/ik5/audstudio/formats/aiff"
	"github.com/ik5/audstudio/formats/mp3"
	"github.com/ik5/audstudio/formats/vorbis"
	"github.com/ik5/audstudio/formats/wav"
)

// NewRegistry returns a registry holding every bundled decoder. MP3 is
// registered last because its frame-sync check is the loosest.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	return reg
}

// DecodeBytes detects the container of data, decodes it fully and returns a
// stereo buffer at sampleRate. Decoding stops early when ctx is done.
func DecodeBytes(ctx context.Context, reg *audio.Registry, data []byte, sampleRate int) (*beep.Buffer, error) {
	header := data[:min(len(data), audio.SniffLen)]
	format, dec, ok := reg.Detect(header)
	if !ok {
		return nil, audio.ErrUnknownFormat
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	defer src.Close()

	buf, err := audio.Collect(&ctxSource{Source: src, ctx: ctx}, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	return buf, nil
}

// NewDecodeFunc binds reg to DecodeBytes.
func NewDecodeFunc(reg *audio.Registry) func(context.Context, []byte, int) (*beep.Buffer, error) {
	return func(ctx context.Context, data []byte, sampleRate int) (*beep.Buffer, error) {
		return DecodeBytes(ctx, reg, data, sampleRate)
	}
}

type ctxSource struct {
	audio.Source
	ctx context.Context
}

func (s *ctxSource) ReadSamples(dst []float32) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	return s.Source.ReadSamples(dst)
}
