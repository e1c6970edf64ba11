// Package network assembles and owns the propagation network of one analysis
// run: the set of relation writers, the readers attached to them, and the
// domain/signature metadata they are declared over.
//
// A Session replaces the ambient process-wide relation singletons of classic
// analysis frameworks with an explicit owner object: it is created at run
// start, wired once from a declarative table of (name, attributes, domains)
// rows, and discarded at run end together with all of its queues. Relation
// names are unique within a session.
//
// The declarative table can be given as plain Go values or decoded from YAML,
// so per-relation writer/reader types never need to be generated.
package network
