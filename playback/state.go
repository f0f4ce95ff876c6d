// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"github.com/google/uuid"

	"github.com/ik5/audstudio/source"
)

type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is the transport view handed to renderers.
type Snapshot struct {
	State     State
	IsPlaying bool
	// CurrentTime and Duration are in seconds. Duration is NaN until known.
	CurrentTime float64
	Duration    float64
	Volume      float64
	IsMuted     bool

	HasSource bool
	Kind      source.Kind
	SourceID  uuid.UUID
	// Resumable is false for decoded sources, whose pause is a stop.
	Resumable bool
}
