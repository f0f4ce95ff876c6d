// SPDX-License-Identifier: EPL-2.0

// Package playback is the transport state machine of a studio session.
//
// An Engine owns the gain stage and the source adapter and moves between
// Idle, Loading, Playing, Paused and Stopped:
//
//	idle     --attach external--> stopped
//	idle     --attach bytes-----> loading --decoded--> stopped
//	                                       --failed---> idle
//	stopped  --Play-------------> playing
//	paused   --Play-------------> playing
//	playing  --Pause------------> paused (external) / stopped (decoded)
//	any      --Stop or end------> stopped, time 0
//
// Decoded sources cannot pause. Pause stops them, rewinds to 0 and returns
// ErrPauseIsStop so callers can tell the user; Snapshot.Resumable is false
// for them. A decoded node plays once: after it finishes or is stopped,
// Play returns ErrSourceSpent and leaves the state alone. Replay builds a
// fresh node from the retained buffer and starts from the beginning.
//
// Operations on a session without a source, or before the graph is running,
// are no-ops that return a warning-class error; see IsWarning.
package playback
