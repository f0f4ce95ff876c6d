// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis. The decoder yields float samples directly,
// so no integer scaling is involved.
package vorbis
