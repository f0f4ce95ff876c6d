// SPDX-License-Identifier: EPL-2.0

package graph

// Lifecycle is the state of a Context.
type Lifecycle int

const (
	Uninitialized Lifecycle = iota
	Suspended
	Running
	Closed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
