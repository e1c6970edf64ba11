// Package pointsto is a minimal flow-insensitive points-to analysis built on
// the propagation substrate. It stands in for the rule-evaluation modules of
// a full analysis framework: an allocation rule seeds points-to facts and an
// assignment rule propagates them along copy edges until the network reaches
// quiescence.
//
// The analysis works over three relations: alloc(var, obj) for allocation
// sites, assign(src, dst) for copy assignments dst := src, and the derived
// pointsTo(var, obj).
package pointsto

import (
	"sort"

	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"

	"github.com/pointsto/relnet/pkg/fixpoint"
	"github.com/pointsto/relnet/pkg/network"
	"github.com/pointsto/relnet/pkg/relation"
)

const (
	RelAlloc    = "alloc"
	RelAssign   = "assign"
	RelPointsTo = "pointsTo"
)

// Program is the input fact base: the variable and object universes plus the
// allocation and assignment facts of the analyzed program.
type Program struct {
	Variables []string `json:"variables"`
	Objects   []string `json:"objects"`
	Allocs    []Alloc  `json:"allocs"`
	Assigns   []Assign `json:"assigns"`
}

// Alloc states that a variable directly receives the object of an allocation
// site: var = new obj.
type Alloc struct {
	Var string `json:"var"`
	Obj string `json:"obj"`
}

// Assign states a copy assignment dst := src.
type Assign struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// ParseProgram decodes a YAML (or JSON) program description.
func ParseProgram(data []byte) (Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Program{}, err
	}
	return p, nil
}

// networkTable builds the declarative relation table of the analysis.
func networkTable(p Program) network.Config {
	return network.Config{
		Domains: []network.DomainConfig{
			{Name: "var", Elements: p.Variables},
			{Name: "obj", Elements: p.Objects},
		},
		Relations: []network.RelationConfig{
			{Name: RelAlloc, Attributes: []network.AttributeConfig{
				{Name: "var", Domain: "var"}, {Name: "obj", Domain: "obj"},
			}},
			{Name: RelAssign, Attributes: []network.AttributeConfig{
				{Name: "src", Domain: "var"}, {Name: "dst", Domain: "var"},
			}},
			{Name: RelPointsTo, Attributes: []network.AttributeConfig{
				{Name: "var", Domain: "var"}, {Name: "obj", Domain: "obj"},
			}},
		},
	}
}

// Options configures an analysis.
type Options struct {
	Logger logr.Logger

	// MaxRounds is handed to the fixpoint driver; zero means unbounded.
	MaxRounds int
}

// Analysis owns the session, rules and driver of one points-to run.
type Analysis struct {
	session *network.Session
	driver  *fixpoint.Driver
	log     logr.Logger
}

// New assembles the propagation network for a program: declares the domains
// and relations, attaches every rule reader, and only then publishes the
// initial alloc and assign facts, so no rule can miss a delta.
func New(p Program, opts Options) (*Analysis, error) {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	s, err := network.New(networkTable(p), network.Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	allocW, err := s.Writer(RelAlloc)
	if err != nil {
		return nil, err
	}
	assignW, err := s.Writer(RelAssign)
	if err != nil {
		return nil, err
	}
	ptW, err := s.Writer(RelPointsTo)
	if err != nil {
		return nil, err
	}

	rules := []fixpoint.Rule{
		newAllocRule(allocW.Reader("alloc-rule"), ptW),
		newAssignRule(assignW.Reader("assign-rule"), ptW.Reader("assign-rule"), ptW),
	}

	driver, err := fixpoint.NewDriver(s, rules, fixpoint.Options{
		Logger:    logger,
		MaxRounds: opts.MaxRounds,
	})
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		session: s,
		driver:  driver,
		log:     logger.WithName("pointsto"),
	}
	if err := a.seed(p); err != nil {
		return nil, err
	}
	return a, nil
}

// seed publishes the program's base facts. Readers are already attached, so
// the first driver round drains them.
func (a *Analysis) seed(p Program) error {
	allocW, err := a.session.Writer(RelAlloc)
	if err != nil {
		return err
	}
	for _, f := range p.Allocs {
		if err := allocW.AddTuple(relation.Tuple{f.Var, f.Obj}, "program-fact"); err != nil {
			return err
		}
	}

	assignW, err := a.session.Writer(RelAssign)
	if err != nil {
		return err
	}
	for _, f := range p.Assigns {
		if err := assignW.AddTuple(relation.Tuple{f.Src, f.Dst}, "program-fact"); err != nil {
			return err
		}
	}

	return nil
}

// Run drives the network to quiescence and returns the number of rounds that
// derived new facts.
func (a *Analysis) Run() (int, error) {
	rounds, err := a.driver.Run()
	if err != nil {
		return rounds, err
	}
	a.log.V(1).Info("analysis complete", "rounds", rounds)
	return rounds, nil
}

// Relation returns the accumulated value of a named relation.
func (a *Analysis) Relation(name string) (relation.Relation, error) {
	w, err := a.session.Writer(name)
	if err != nil {
		return relation.Relation{}, err
	}
	return w.Accumulated(), nil
}

// PointsTo returns a point-lookup view of the computed points-to sets: the
// sorted object list a variable may point to. The mapping deliberately offers
// lookups only; full enumeration goes through Relation(RelPointsTo).
func (a *Analysis) PointsTo() network.Lookup[string, []string] {
	return network.LookupFunc[string, []string](func(v string) ([]string, bool) {
		w, err := a.session.Writer(RelPointsTo)
		if err != nil {
			return nil, false
		}

		vars := w.Signature().Attributes()[0].Domain
		if !vars.Contains(v) {
			return nil, false
		}

		tuples, err := w.Accumulated().Tuples()
		if err != nil {
			return nil, false
		}

		var objs []string
		for _, t := range tuples {
			if t[0] == v {
				objs = append(objs, t[1])
			}
		}
		sort.Strings(objs)
		return objs, true
	})
}
