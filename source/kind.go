// SPDX-License-Identifier: EPL-2.0

package source

import (
	"context"

	"github.com/gopxl/beep/v2"

	"github.com/ik5/audstudio/graph"
)

// Kind tags the two source variants.
type Kind int

const (
	External Kind = iota
	DecodedBytes
)

func (k Kind) String() string {
	switch k {
	case External:
		return "external"
	case DecodedBytes:
		return "decoded"
	default:
		return "unknown"
	}
}

// MediaHandle is a caller-owned playback handle with its own transport
// clock. Times are in seconds; Duration is NaN until known.
type MediaHandle interface {
	graph.MediaHandle

	Play() error
	Pause() error
	Seek(seconds float64) error
	CurrentTime() float64
	Duration() float64
	// OnEnded registers the single end-of-media callback; nil clears it.
	OnEnded(fn func())
}

// DecodeFunc decodes an encoded payload into a stereo buffer at sampleRate.
type DecodeFunc func(ctx context.Context, data []byte, sampleRate int) (*beep.Buffer, error)

// Request selects what to attach. Media is used for External, Bytes for
// DecodedBytes.
type Request struct {
	Kind  Kind
	Media MediaHandle
	Bytes []byte
}
