package fixpoint

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pointsto/relnet/pkg/network"
	"github.com/pointsto/relnet/pkg/queue"
	"github.com/pointsto/relnet/pkg/relation"
)

func TestFixpoint(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fixpoint Suite")
}

// gridRule derives the coordinate successors of every drained tuple: from
// (a_i, b_j) it derives (a_i+1, b_j) and (a_i, b_j+1). Starting from a single
// seed it eventually fills the whole product space.
type gridRule struct {
	d1, d2 *relation.Domain
	in     *queue.Reader
	out    *queue.Writer
}

func (r *gridRule) Name() string { return "grid" }

func (r *gridRule) Process() error {
	for _, delta := range r.in.Drain() {
		tuples, err := delta.Tuples()
		if err != nil {
			return err
		}
		for _, t := range tuples {
			i, err := r.d1.Index(t[0])
			if err != nil {
				return err
			}
			j, err := r.d2.Index(t[1])
			if err != nil {
				return err
			}

			if i+1 < r.d1.Size() {
				a, err := r.d1.Element(i + 1)
				if err != nil {
					return err
				}
				if err := r.out.AddTuple(relation.Tuple{a, t[1]}, "grid-succ-a"); err != nil {
					return err
				}
			}
			if j+1 < r.d2.Size() {
				b, err := r.d2.Element(j + 1)
				if err != nil {
					return err
				}
				if err := r.out.AddTuple(relation.Tuple{t[0], b}, "grid-succ-b"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// constRule publishes the same fact on every round.
type constRule struct {
	out *queue.Writer
	t   relation.Tuple
}

func (r *constRule) Name() string   { return "const" }
func (r *constRule) Process() error { return r.out.AddTuple(r.t) }

// failRule fails on the nth invocation.
type failRule struct {
	n, calls int
	err      error
}

func (r *failRule) Name() string { return "fail" }

func (r *failRule) Process() error {
	r.calls++
	if r.calls >= r.n {
		return r.err
	}
	return nil
}

func gridSession(n, m int) (*network.Session, *relation.Domain, *relation.Domain) {
	e1 := make([]string, n)
	for i := range e1 {
		e1[i] = fmt.Sprintf("a%d", i)
	}
	e2 := make([]string, m)
	for j := range e2 {
		e2[j] = fmt.Sprintf("b%d", j)
	}

	d1, err := relation.NewDomain("d1", e1...)
	Expect(err).NotTo(HaveOccurred())
	d2, err := relation.NewDomain("d2", e2...)
	Expect(err).NotTo(HaveOccurred())

	s := network.NewSession(network.Options{})
	Expect(s.DeclareDomain(d1)).To(Succeed())
	Expect(s.DeclareDomain(d2)).To(Succeed())

	sig, err := relation.NewSignature(
		relation.Attribute{Name: "a", Domain: d1},
		relation.Attribute{Name: "b", Domain: d2},
	)
	Expect(err).NotTo(HaveOccurred())
	_, err = s.DeclareRelation("span", sig)
	Expect(err).NotTo(HaveOccurred())

	return s, d1, d2
}

var _ = Describe("Driver", func() {
	It("should reach quiescence within the lattice bound", func() {
		const n, m = 5, 4

		s, d1, d2 := gridSession(n, m)
		w, err := s.Writer("span")
		Expect(err).NotTo(HaveOccurred())

		rule := &gridRule{d1: d1, d2: d2, in: w.Reader("grid"), out: w}

		// Seed before the run; the first round drains it.
		Expect(w.AddTuple(relation.Tuple{"a0", "b0"})).To(Succeed())

		driver, err := NewDriver(s, []Rule{rule}, Options{})
		Expect(err).NotTo(HaveOccurred())

		rounds, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())

		// The full product space is derived, in at most |D1|x|D2| non-empty
		// rounds.
		Expect(w.Accumulated().Cardinality()).To(Equal(uint64(n * m)))
		Expect(rounds).To(BeNumerically("<=", n*m))
		Expect(rounds).To(BeNumerically(">", 0))
	})

	It("should quiesce immediately when a rule republishes known facts", func() {
		s, _, _ := gridSession(2, 2)
		w, err := s.Writer("span")
		Expect(err).NotTo(HaveOccurred())

		rule := &constRule{out: w, t: relation.Tuple{"a0", "b0"}}

		driver, err := NewDriver(s, []Rule{rule}, Options{})
		Expect(err).NotTo(HaveOccurred())

		rounds, err := driver.Run()
		Expect(err).NotTo(HaveOccurred())

		// Round 1 publishes the new fact, round 2 adds nothing.
		Expect(rounds).To(Equal(1))
		Expect(w.Accumulated().Cardinality()).To(Equal(uint64(1)))
	})

	It("should abort when the round limit is exceeded", func() {
		s, d1, d2 := gridSession(8, 8)
		w, err := s.Writer("span")
		Expect(err).NotTo(HaveOccurred())

		rule := &gridRule{d1: d1, d2: d2, in: w.Reader("grid"), out: w}
		Expect(w.AddTuple(relation.Tuple{"a0", "b0"})).To(Succeed())

		driver, err := NewDriver(s, []Rule{rule}, Options{MaxRounds: 2})
		Expect(err).NotTo(HaveOccurred())

		_, err = driver.Run()
		Expect(err).To(MatchError(ErrDiverged))
	})

	It("should propagate rule failures", func() {
		s, _, _ := gridSession(2, 2)

		boom := errors.New("boom")
		driver, err := NewDriver(s, []Rule{&failRule{n: 1, err: boom}}, Options{})
		Expect(err).NotTo(HaveOccurred())

		_, err = driver.Run()
		Expect(err).To(MatchError(boom))
	})

	It("should reject empty rule schedules", func() {
		s, _, _ := gridSession(2, 2)
		_, err := NewDriver(s, nil, Options{})
		Expect(err).To(HaveOccurred())

		_, err = NewDriver(nil, []Rule{&failRule{}}, Options{})
		Expect(err).To(HaveOccurred())
	})
})
