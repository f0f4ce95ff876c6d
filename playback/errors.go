// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"fmt"

	"github.com/ik5/audstudio/graph"
	"github.com/ik5/audstudio/source"
)

var (
	ErrNoSource             = source.ErrNoSource
	ErrNotReady             = graph.ErrNotReady
	ErrUnsupportedOperation = source.ErrUnsupportedOperation

	// ErrPauseIsStop reports that pausing a decoded source stopped it.
	ErrPauseIsStop = errors.New("decoded sources cannot pause; playback stopped")

	ErrClosed = errors.New("playback engine closed")

	// ErrSourceSpent reports Play on a decoded source that already finished
	// or was stopped. Replay or a new attach plays it again.
	ErrSourceSpent = fmt.Errorf("decoded source cannot restart: %w", source.ErrSpent)
)

// IsWarning reports whether err is a transport no-op rather than a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrNoSource) ||
		errors.Is(err, ErrNotReady) ||
		errors.Is(err, ErrPauseIsStop) ||
		errors.Is(err, ErrUnsupportedOperation)
}
