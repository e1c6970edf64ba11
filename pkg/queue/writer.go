package queue

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/pointsto/relnet/pkg/relation"
)

// Writer is the publish side of one named relation. It accumulates published
// facts by monotone union, reduces every incoming delta to its genuinely-new
// part, and forwards that part to every registered reader. A non-empty
// effective delta additionally sets the writer's invalidation flag for the
// current fixpoint round. Writers are created once when the propagation
// network is assembled and live for the whole analysis run.
type Writer struct {
	mu          sync.Mutex
	name        string
	sig         *relation.Signature
	accumulated relation.Relation
	readers     []*Reader
	invalidated bool
	log         logr.Logger
}

// NewWriter creates the writer for a named relation over the given signature.
func NewWriter(name string, sig *relation.Signature, logger logr.Logger) *Writer {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return &Writer{
		name:        name,
		sig:         sig,
		accumulated: relation.Empty(sig),
		log:         logger.WithName("writer").WithValues("relation", name),
	}
}

// Name returns the relation name.
func (w *Writer) Name() string { return w.name }

// Signature returns the relation's declared signature.
func (w *Writer) Signature() *relation.Signature { return w.sig }

// AddTuple builds a singleton relation over the writer's signature from a
// literal tuple and publishes it. The optional trace is an advisory
// provenance marker identifying the origin of the fact.
func (w *Writer) AddTuple(t relation.Tuple, trace ...string) error {
	delta, err := relation.FromTuple(w.sig, t)
	if err != nil {
		return err
	}
	return w.Add(delta, trace...)
}

// Add publishes a delta on the relation. The delta's signature must match the
// writer's declared signature; a mismatch is rejected before the accumulated
// relation is touched and before any forwarding. The delta is reduced to the
// tuples not already accumulated; if that effective delta is non-empty it is
// unioned into the accumulated relation and the invalidation flag is set.
// The effective delta is then forwarded to every registered reader in
// registration order, even when it is empty (readers treat empty deltas as
// cheap no-ops).
func (w *Writer) Add(delta relation.Relation, trace ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.sig.Equal(delta.Signature()) {
		return relation.NewSignatureMismatchError(w.sig, delta.Signature())
	}

	effective, err := delta.Difference(w.accumulated)
	if err != nil {
		return err
	}

	if !effective.IsEmpty() {
		w.invalidated = true
		w.accumulated, err = w.accumulated.Union(effective)
		if err != nil {
			return err
		}
	}

	if w.log.V(4).Enabled() {
		w.log.V(4).Info("add", "cardinality", delta.Cardinality(),
			"new", effective.Cardinality(), "readers", len(w.readers), "trace", trace)
	}

	for _, r := range w.readers {
		r.add(effective)
	}

	return nil
}

// Reader creates a new reader subscribed to this writer and returns it. The
// reader observes every delta published after its registration; deltas
// forwarded earlier are not replayed.
func (w *Writer) Reader(name string) *Reader {
	w.mu.Lock()
	defer w.mu.Unlock()

	r := newReader(w.name+":"+name, w.sig)
	w.readers = append(w.readers, r)

	w.log.V(2).Info("reader registered", "reader", r.Name())

	return r
}

// Accumulated returns the monotonically-growing relation accumulated over all
// adds. Relations never shrink: no tuple is ever retracted. The snapshot can
// be used to bring a late subscriber up to date out of band; the forwarding
// protocol itself never replays it.
func (w *Writer) Accumulated() relation.Relation {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accumulated
}

// Invalidated reports whether any effective (non-empty) delta has been
// published since the flag was last cleared. The fixpoint driver polls this
// after each round to decide whether to keep iterating.
func (w *Writer) Invalidated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.invalidated
}

// ClearInvalidated resets the invalidation flag at the start of a round.
func (w *Writer) ClearInvalidated() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.invalidated = false
}
