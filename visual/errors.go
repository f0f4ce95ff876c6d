// SPDX-License-Identifier: EPL-2.0

package visual

import "errors"

var (
	ErrUnknownRenderer = errors.New("unknown renderer")
	ErrAlreadyStarted  = errors.New("visual loop already started")
	ErrInvalidCanvas   = errors.New("canvas size and frame rate must be positive")
)
