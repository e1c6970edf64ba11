package pointsto

import (
	"github.com/pointsto/relnet/pkg/queue"
	"github.com/pointsto/relnet/pkg/relation"
)

// allocRule turns allocation facts into base points-to facts:
//
//	alloc(v, o) => pointsTo(v, o)
type allocRule struct {
	in  *queue.Reader
	out *queue.Writer
}

func newAllocRule(in *queue.Reader, out *queue.Writer) *allocRule {
	return &allocRule{in: in, out: out}
}

func (r *allocRule) Name() string { return "alloc-rule" }

func (r *allocRule) Process() error {
	for _, delta := range r.in.Drain() {
		tuples, err := delta.Tuples()
		if err != nil {
			return err
		}
		for _, t := range tuples {
			if err := r.out.AddTuple(relation.Tuple{t[0], t[1]}, "alloc-rule"); err != nil {
				return err
			}
		}
	}
	return nil
}

// assignRule propagates points-to facts along copy edges:
//
//	assign(s, d) & pointsTo(s, o) => pointsTo(d, o)
//
// The rule integrates the deltas drained from both readers into private
// accumulated state, so a new edge meets all previously seen points-to facts
// and a new points-to fact meets all previously seen edges.
type assignRule struct {
	assignIn *queue.Reader
	ptIn     *queue.Reader
	out      *queue.Writer

	// edges maps a source variable to the destinations it is copied into.
	edges map[string]map[string]bool
	// pts maps a variable to the objects it is known to point to.
	pts map[string]map[string]bool
}

func newAssignRule(assignIn, ptIn *queue.Reader, out *queue.Writer) *assignRule {
	return &assignRule{
		assignIn: assignIn,
		ptIn:     ptIn,
		out:      out,
		edges:    make(map[string]map[string]bool),
		pts:      make(map[string]map[string]bool),
	}
}

func (r *assignRule) Name() string { return "assign-rule" }

func (r *assignRule) Process() error {
	// New edges meet the accumulated points-to facts.
	for _, delta := range r.assignIn.Drain() {
		tuples, err := delta.Tuples()
		if err != nil {
			return err
		}
		for _, t := range tuples {
			src, dst := t[0], t[1]
			if r.edges[src] == nil {
				r.edges[src] = make(map[string]bool)
			}
			if r.edges[src][dst] {
				continue
			}
			r.edges[src][dst] = true

			for obj := range r.pts[src] {
				if err := r.out.AddTuple(relation.Tuple{dst, obj}, "assign-rule"); err != nil {
					return err
				}
			}
		}
	}

	// New points-to facts meet the accumulated edges.
	for _, delta := range r.ptIn.Drain() {
		tuples, err := delta.Tuples()
		if err != nil {
			return err
		}
		for _, t := range tuples {
			v, obj := t[0], t[1]
			if r.pts[v] == nil {
				r.pts[v] = make(map[string]bool)
			}
			if r.pts[v][obj] {
				continue
			}
			r.pts[v][obj] = true

			for dst := range r.edges[v] {
				if err := r.out.AddTuple(relation.Tuple{dst, obj}, "assign-rule"); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
