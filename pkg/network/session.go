package network

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/pointsto/relnet/pkg/queue"
	"github.com/pointsto/relnet/pkg/relation"
)

// Options configures a session.
type Options struct {
	// Logger is propagated to every writer the session creates.
	Logger logr.Logger
}

// Session owns the complete propagation network of one analysis run: every
// relation writer, keyed by its globally-unique relation name, plus the
// domains their signatures are built from. All queues are torn down together
// with the session at the end of the run.
type Session struct {
	mu          sync.RWMutex
	domains     map[string]*relation.Domain
	writers     map[string]*queue.Writer
	order       []string
	logger, log logr.Logger
}

// NewSession creates an empty session. Domains and relations are added with
// the Declare calls, or all at once by building from a Config with New.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return &Session{
		domains: make(map[string]*relation.Domain),
		writers: make(map[string]*queue.Writer),
		logger:  logger,
		log:     logger.WithName("session"),
	}
}

// New builds a fully wired session from a declarative network table.
func New(config Config, opts Options) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := NewSession(opts)
	for _, dc := range config.Domains {
		d, err := relation.NewDomain(dc.Name, dc.Elements...)
		if err != nil {
			return nil, NewConfigError("invalid domain", err)
		}
		if err := s.DeclareDomain(d); err != nil {
			return nil, err
		}
	}

	for _, rc := range config.Relations {
		attributes := make([]relation.Attribute, len(rc.Attributes))
		for i, ac := range rc.Attributes {
			d, err := s.Domain(ac.Domain)
			if err != nil {
				return nil, err
			}
			attributes[i] = relation.Attribute{Name: ac.Name, Domain: d}
		}

		sig, err := relation.NewSignature(attributes...)
		if err != nil {
			return nil, NewConfigError("invalid signature", err)
		}
		if _, err := s.DeclareRelation(rc.Name, sig); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// DeclareDomain registers a domain under its name.
func (s *Session) DeclareDomain(d *relation.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.domains[d.Name()]; exists {
		return NewDuplicateError("domain", d.Name())
	}
	s.domains[d.Name()] = d

	s.log.V(2).Info("domain declared", "domain", d.Name(), "size", d.Size())

	return nil
}

// DeclareRelation creates the writer for a named relation. Relation names are
// unique per session: redeclaration is an error, never a silent merge.
func (s *Session) DeclareRelation(name string, sig *relation.Signature) (*queue.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.writers[name]; exists {
		return nil, NewDuplicateError("relation", name)
	}

	w := queue.NewWriter(name, sig, s.logger)
	s.writers[name] = w
	s.order = append(s.order, name)

	s.log.V(2).Info("relation declared", "relation", name, "signature", sig.String(),
		"space", sig.Space())

	return w, nil
}

// Domain returns a declared domain by name.
func (s *Session) Domain(name string) (*relation.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[name]
	if !ok {
		return nil, NewNotFoundError("domain", name)
	}
	return d, nil
}

// Writer returns the writer of a declared relation.
func (s *Session) Writer(name string) (*queue.Writer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.writers[name]
	if !ok {
		return nil, NewNotFoundError("relation", name)
	}
	return w, nil
}

// Reader attaches a new reader for the given consumer to a declared relation.
// Readers must be attached before the first fact is published on the
// relation: past deltas are not replayed.
func (s *Session) Reader(rel, consumer string) (*queue.Reader, error) {
	w, err := s.Writer(rel)
	if err != nil {
		return nil, err
	}
	return w.Reader(consumer), nil
}

// Relations returns the declared relation names in declaration order.
func (s *Session) Relations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]string, len(s.order))
	copy(ret, s.order)
	return ret
}

// BeginRound clears every writer's invalidation flag. The fixpoint driver
// calls this before letting the rules run a round.
func (s *Session) BeginRound() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.writers {
		w.ClearInvalidated()
	}
}

// Quiescent reports whether no writer has been invalidated since the last
// BeginRound, i.e. whether the last round changed nothing anywhere.
func (s *Session) Quiescent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.writers {
		if w.Invalidated() {
			return false
		}
	}
	return true
}
