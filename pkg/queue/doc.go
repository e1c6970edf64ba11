// Package queue implements the publish/subscribe endpoints of one named
// relation in the propagation network.
//
// A Writer owns the publish side of a relation: it accepts new facts as
// literal tuples or as compact relation deltas, decides whether the latest
// delta added anything new (the invalidation flag consumed by the fixpoint
// driver), and forwards every delta to all registered Readers. A Reader is one
// subscriber's FIFO of pending deltas, drained once per fixpoint round.
//
// The protocol is synchronous: Writer.Add performs the emptiness test and all
// forwarding before it returns. Reader registration and adds on the same
// writer are serialized by the writer's lock, so a reader can never miss or
// double-receive a delta because of an interleaved registration.
//
// Two caveats are inherent to the design:
//   - No replay: a reader attached after deltas have been forwarded never
//     sees those past deltas. Networks must attach all readers before the
//     first fact is published on a relation, or replay the writer's
//     accumulated value out of band.
//   - No backpressure: a reader that is never drained grows its pending
//     buffer without bound. Consumers are responsible for draining every
//     round.
package queue
