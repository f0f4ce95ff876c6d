// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile       = errors.New("not a WAV file")
	ErrUnsupportedCodec = errors.New("only integer PCM WAV is supported")
	ErrUnsupportedDepth = errors.New("unsupported WAV bit depth")
	ErrNoChannels       = errors.New("WAV file declares no channels")
	ErrChannelMismatch  = errors.New("sample count is not a multiple of channels")
)
