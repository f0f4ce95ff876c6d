// SPDX-License-Identifier: EPL-2.0

// Package source attaches one playback source at a time to the audio graph.
//
// Two kinds are supported. An External source wraps a caller-owned
// MediaHandle whose own clock is authoritative; the adapter only taps its
// output. A DecodedBytes source decodes an encoded payload into a buffer and
// plays it through a one-shot node that can be started once. Playing it again
// needs a fresh node, built by Rearm without decoding again.
//
// Both kinds pass through the same Gain stage before the graph's tap:
//
//	a := source.NewAdapter(gctx, source.NewGain(0.7), decode)
//	p, err := a.Attach(ctx, source.Request{Kind: source.DecodedBytes, Bytes: data})
//	if err != nil {
//	    return err
//	}
//	att, err := p.Wait(ctx)
//
// Attach always detaches the previous source first, whatever the outcome of
// the new attach. A decode that is still running when the next Attach or
// Detach happens is superseded: its result is dropped and Wait reports
// ErrSuperseded.
package source
