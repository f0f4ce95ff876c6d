// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF and AIFF-C PCM files through
// github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is accepted. 8-bit AIFF samples are
// signed, unlike WAV.
package aiff
