// SPDX-License-Identifier: EPL-2.0

package source

import (
	"errors"

	"github.com/ik5/audstudio/audio"
)

var (
	ErrEmptyInput           = errors.New("no audio payload given")
	ErrInvalidFile          = errors.New("payload is not a recognised audio file")
	ErrDecode               = errors.New("audio payload could not be decoded")
	ErrSuperseded           = errors.New("attach superseded by a newer request")
	ErrUnsupportedOperation = errors.New("operation not supported by this source kind")
	ErrSpent                = errors.New("one-shot source already played")
	ErrNoSource             = errors.New("no source attached")
	ErrUnknownKind          = errors.New("unknown source kind")
)

// DecodeError reports a payload the decode collaborator rejected. It matches
// ErrDecode, and ErrInvalidFile when no decoder recognised the data.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decoding audio: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrDecode:
		return true
	case ErrInvalidFile:
		return errors.Is(e.Err, audio.ErrUnknownFormat)
	}
	return false
}
