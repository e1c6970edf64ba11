// Package fixpoint runs a propagation network to quiescence. The driver
// repeatedly lets every rule drain its readers, derive new facts and push
// them to the writers, and stops after the first round in which no writer
// reported a change. Because relations only grow by union over finite
// domains, the network ranges over a finite lattice and quiescence is reached
// in a bounded number of rounds; the driver needs no other termination
// signal.
package fixpoint

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/pointsto/relnet/pkg/network"
)

// ErrDiverged reports that the round limit was exceeded. With correctly
// declared finite domains this cannot happen; hitting it means a rule keeps
// publishing facts outside the declared universe of its relations.
var ErrDiverged = errors.New("fixpoint did not converge within the round limit")

// Rule is one rule-evaluation module of the analysis: it drains its readers,
// derives zero or more new tuples from the drained facts, and pushes them to
// the appropriate writers. Rules run single-threaded in registration order;
// Process must be synchronous.
type Rule interface {
	Name() string
	Process() error
}

// Options configures a driver.
type Options struct {
	Logger logr.Logger

	// MaxRounds aborts a run that exceeds the given number of rounds. Zero
	// means unbounded, relying on domain finiteness for termination.
	MaxRounds int
}

// Driver owns the rule schedule of one analysis run over a session's
// propagation network.
type Driver struct {
	session   *network.Session
	rules     []Rule
	maxRounds int
	log       logr.Logger
}

// NewDriver creates a driver for the given session and ordered rule list.
func NewDriver(session *network.Session, rules []Rule, opts Options) (*Driver, error) {
	if session == nil {
		return nil, fmt.Errorf("no session")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("no rules")
	}

	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return &Driver{
		session:   session,
		rules:     rules,
		maxRounds: opts.MaxRounds,
		log:       logger.WithName("fixpoint"),
	}, nil
}

// Run iterates rounds until quiescence and returns the number of rounds that
// changed at least one relation. Initial facts must have been published (and
// all readers attached) before Run is called; the first round drains them.
func (d *Driver) Run() (int, error) {
	changed := 0
	for round := 1; ; round++ {
		if d.maxRounds > 0 && round > d.maxRounds {
			return changed, fmt.Errorf("%w: %d rounds", ErrDiverged, d.maxRounds)
		}

		d.session.BeginRound()

		for _, r := range d.rules {
			if err := r.Process(); err != nil {
				return changed, fmt.Errorf("rule %s failed in round %d: %w", r.Name(), round, err)
			}
		}

		if d.session.Quiescent() {
			d.log.V(1).Info("quiescent", "rounds", round, "changed", changed)
			return changed, nil
		}

		changed++
		d.log.V(2).Info("round complete", "round", round)
	}
}
