// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrInvalidFormat  = errors.New("source reports no sample rate or channels")
	ErrEmptyStream    = errors.New("stream produced no samples")
	ErrUnknownFormat  = errors.New("no registered decoder recognises the data")
)
