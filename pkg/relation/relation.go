package relation

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Relation is an immutable value denoting a finite set of tuples over a fixed
// signature. The tuple set is stored as a compressed bitmap of encoded tuple
// indices, which keeps union, emptiness and equality cheap regardless of how
// many logical tuples the relation contains. Two relations denoting the same
// tuple set always compare equal.
//
// The zero Relation is not usable; construct values with Empty, FromTuple or
// FromTuples.
type Relation struct {
	sig  *Signature
	bits *roaring64.Bitmap
}

// Empty returns the empty relation over the given signature.
func Empty(sig *Signature) Relation {
	return Relation{sig: sig, bits: roaring64.NewBitmap()}
}

// FromTuple builds a singleton relation from a literal tuple.
func FromTuple(sig *Signature, t Tuple) (Relation, error) {
	code, err := sig.Encode(t)
	if err != nil {
		return Relation{}, err
	}
	return Relation{sig: sig, bits: roaring64.BitmapOf(code)}, nil
}

// FromTuples builds a relation containing all the given tuples.
func FromTuples(sig *Signature, tuples ...Tuple) (Relation, error) {
	bits := roaring64.NewBitmap()
	for _, t := range tuples {
		code, err := sig.Encode(t)
		if err != nil {
			return Relation{}, err
		}
		bits.Add(code)
	}
	return Relation{sig: sig, bits: bits}, nil
}

// Signature returns the relation's signature.
func (r Relation) Signature() *Signature { return r.sig }

// IsEmpty reports whether the relation contains no tuples.
func (r Relation) IsEmpty() bool {
	return r.bits == nil || r.bits.IsEmpty()
}

// Cardinality returns the number of tuples in the relation.
func (r Relation) Cardinality() uint64 {
	if r.bits == nil {
		return 0
	}
	return r.bits.GetCardinality()
}

// Union returns the set union of two relations over the same signature. Union
// is associative, commutative and idempotent; neither operand is modified.
func (r Relation) Union(other Relation) (Relation, error) {
	if !r.sig.Equal(other.sig) {
		return Relation{}, NewSignatureMismatchError(r.sig, other.sig)
	}
	bits := r.bits.Clone()
	bits.Or(other.bits)
	return Relation{sig: r.sig, bits: bits}, nil
}

// Difference returns the tuples of r not contained in other. The writer
// protocol uses this to reduce an incoming delta to its genuinely-new part.
func (r Relation) Difference(other Relation) (Relation, error) {
	if !r.sig.Equal(other.sig) {
		return Relation{}, NewSignatureMismatchError(r.sig, other.sig)
	}
	bits := r.bits.Clone()
	bits.AndNot(other.bits)
	return Relation{sig: r.sig, bits: bits}, nil
}

// Equal reports whether two relations denote the same tuple set. Relations
// over different signatures are never equal. The test compares the canonical
// bitmap forms and does not depend on the tuple-set cardinality.
func (r Relation) Equal(other Relation) bool {
	if !r.sig.Equal(other.sig) {
		return false
	}
	if r.bits == nil || other.bits == nil {
		return r.IsEmpty() && other.IsEmpty()
	}
	return r.bits.Equals(other.bits)
}

// Contains reports whether the relation contains the given tuple.
func (r Relation) Contains(t Tuple) (bool, error) {
	code, err := r.sig.Encode(t)
	if err != nil {
		return false, err
	}
	return r.bits != nil && r.bits.Contains(code), nil
}

// Tuples decodes the relation back into explicit tuples, in encoding order.
// This materializes the full tuple set and is meant for rule evaluation and
// debugging, not for the change-detection fast path.
func (r Relation) Tuples() ([]Tuple, error) {
	if r.bits == nil {
		return nil, nil
	}
	ret := make([]Tuple, 0, r.bits.GetCardinality())
	for _, code := range r.bits.ToArray() {
		t, err := r.sig.Decode(code)
		if err != nil {
			return nil, err
		}
		ret = append(ret, t)
	}
	return ret, nil
}

// String returns a readable form of the relation for debugging. Large
// relations are truncated.
func (r Relation) String() string {
	const limit = 8

	if r.IsEmpty() {
		return "{}"
	}

	tuples, err := r.Tuples()
	if err != nil {
		return fmt.Sprintf("{<%d tuples>}", r.Cardinality())
	}

	parts := []string{}
	for i, t := range tuples {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... %d more", len(tuples)-limit))
			break
		}
		parts = append(parts, t.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
