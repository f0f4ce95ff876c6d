// SPDX-License-Identifier: EPL-2.0

// Package graph owns the audio graph shared by a studio session: one output
// sink, one frequency-analysis tap in front of it, and at most one wired input.
//
// A Registry hands out the process-wide Context. The Context starts
// Suspended, the way output subsystems refuse to make sound until a user
// gesture, and becomes Running after ResumeOnInteraction:
//
//	reg := graph.NewRegistry(otoout.Open, graph.DefaultConfig())
//	gctx, err := reg.Acquire()
//	if errors.Is(err, graph.ErrUnsupportedEnvironment) {
//	    // no audio output on this machine
//	}
//	_ = gctx.ResumeOnInteraction(ctx)
//
// The signal path is fixed: input -> tap -> sink. Callers wire their node with
// Connect exactly once per attach and unwire it with Disconnect.
//
// The output pulls the graph from its own goroutine; every method here is safe
// to call concurrently with that pull.
package graph
