// SPDX-License-Identifier: EPL-2.0

package graph

import "errors"

var (
	// ErrUnsupportedEnvironment means no audio output subsystem could be opened.
	ErrUnsupportedEnvironment = errors.New("no audio output subsystem available")

	// ErrNotReady means the output has not been resumed by a user interaction yet.
	ErrNotReady = errors.New("audio output is not running")

	// ErrClosed is returned by every operation on a closed context.
	ErrClosed = errors.New("audio context closed")

	// ErrAlreadyConnected means a node is still wired into the tap.
	ErrAlreadyConnected = errors.New("a source is already connected to the tap")

	// ErrInvalidFFTSize rejects transform windows that are not a power of two in [32, 32768].
	ErrInvalidFFTSize = errors.New("fft size must be a power of two between 32 and 32768")
)
