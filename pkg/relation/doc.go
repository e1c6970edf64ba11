// Package relation implements the compact-relation algebra underlying the
// propagation network: finite attribute domains, relation signatures, and an
// immutable canonical set representation for relations with potentially
// millions of logical tuples.
//
// Key components:
//   - Domain: a named finite universe of elements with a dense integer encoding.
//   - Attribute: a named column bound to a Domain.
//   - Signature: the ordered attribute list a relation's tuples must match.
//   - Tuple: one concrete assignment of domain elements to a signature.
//   - Relation: an immutable canonical tuple set supporting cheap union,
//     emptiness and equality tests regardless of cardinality.
//
// Tuples are encoded into a single mixed-radix index over the product of the
// signature's domain sizes, and a relation stores the set of encoded indices
// in a compressed roaring bitmap. Because the bitmap is a canonical container
// form, equality and emptiness never require materializing tuple sets.
//
// Example usage:
//
//	vars, _ := relation.NewDomain("var", "v1", "v2")
//	types, _ := relation.NewDomain("type", "t1", "t2")
//	sig, _ := relation.NewSignature(
//		relation.Attribute{Name: "var", Domain: vars},
//		relation.Attribute{Name: "type", Domain: types},
//	)
//	r, _ := relation.FromTuple(sig, relation.Tuple{"v1", "t1"})
package relation
