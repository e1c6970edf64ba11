package queue

import (
	"sync"

	"github.com/pointsto/relnet/pkg/relation"
)

// Reader is one subscriber endpoint on a relation: a FIFO of the deltas
// forwarded by the writer since the reader's last drain. Readers take no part
// in change detection, they only buffer. A reader lives exactly as long as
// the writer that created it.
type Reader struct {
	mu      sync.Mutex
	name    string
	sig     *relation.Signature
	pending []relation.Relation
}

func newReader(name string, sig *relation.Signature) *Reader {
	return &Reader{name: name, sig: sig}
}

// Name returns the reader name, qualified by its relation.
func (r *Reader) Name() string { return r.name }

// Signature returns the relation signature the reader receives deltas over.
func (r *Reader) Signature() *relation.Signature { return r.sig }

// add appends a forwarded delta to the pending buffer. Only the owning writer
// calls this, with a delta already validated against the shared signature.
func (r *Reader) add(delta relation.Relation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, delta)
}

// Drain returns the deltas buffered since the last drain, in forwarding
// order, and clears the buffer. Each delta is observed exactly once by
// exactly this reader. A reader that is never drained accumulates deltas
// without bound.
func (r *Reader) Drain() []relation.Relation {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.pending
	r.pending = nil
	return pending
}

// Pending returns the number of buffered deltas without consuming them.
func (r *Reader) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
