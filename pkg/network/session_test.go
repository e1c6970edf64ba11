package network

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pointsto/relnet/pkg/relation"
)

func TestNetwork(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Network Suite")
}

var networkTable = `
domains:
  - name: var
    elements: [v1, v2, v3]
  - name: obj
    elements: [o1, o2]
relations:
  - name: alloc
    attributes:
      - name: var
        domain: var
      - name: obj
        domain: obj
  - name: pointsTo
    attributes:
      - name: var
        domain: var
      - name: obj
        domain: obj
`

var _ = Describe("Config", func() {
	It("should parse a YAML network table", func() {
		c, err := ParseConfig([]byte(networkTable))
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Domains).To(HaveLen(2))
		Expect(c.Relations).To(HaveLen(2))
		Expect(c.Relations[0].Name).To(Equal("alloc"))
		Expect(c.Relations[0].Attributes[1].Domain).To(Equal("obj"))
	})

	It("should reject duplicate relation rows", func() {
		c := Config{
			Domains: []DomainConfig{{Name: "var", Elements: []string{"v1"}}},
			Relations: []RelationConfig{
				{Name: "r", Attributes: []AttributeConfig{{Name: "var", Domain: "var"}}},
				{Name: "r", Attributes: []AttributeConfig{{Name: "var", Domain: "var"}}},
			},
		}
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("should reject attributes over undeclared domains", func() {
		c := Config{
			Domains: []DomainConfig{{Name: "var", Elements: []string{"v1"}}},
			Relations: []RelationConfig{
				{Name: "r", Attributes: []AttributeConfig{{Name: "x", Domain: "missing"}}},
			},
		}
		Expect(c.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("Session", func() {
	var s *Session

	BeforeEach(func() {
		c, err := ParseConfig([]byte(networkTable))
		Expect(err).NotTo(HaveOccurred())
		s, err = New(c, Options{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should declare every relation of the table", func() {
		Expect(s.Relations()).To(Equal([]string{"alloc", "pointsTo"}))

		w, err := s.Writer("alloc")
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Signature().Arity()).To(Equal(2))
		Expect(w.Signature().Space()).To(Equal(uint64(6)))
	})

	It("should fail lookups of undeclared relations", func() {
		_, err := s.Writer("assign")
		Expect(err).To(HaveOccurred())

		_, err = s.Reader("assign", "rule")
		Expect(err).To(HaveOccurred())
	})

	It("should enforce unique relation names", func() {
		w, err := s.Writer("alloc")
		Expect(err).NotTo(HaveOccurred())

		_, err = s.DeclareRelation("alloc", w.Signature())
		Expect(err).To(HaveOccurred())
	})

	It("should wire readers through the session", func() {
		r, err := s.Reader("alloc", "alloc-rule")
		Expect(err).NotTo(HaveOccurred())

		w, err := s.Writer("alloc")
		Expect(err).NotTo(HaveOccurred())
		Expect(w.AddTuple(relation.Tuple{"v1", "o1"})).To(Succeed())

		Expect(r.Drain()).To(HaveLen(1))
	})

	It("should track round quiescence across all writers", func() {
		Expect(s.Quiescent()).To(BeTrue())

		w, err := s.Writer("pointsTo")
		Expect(err).NotTo(HaveOccurred())
		Expect(w.AddTuple(relation.Tuple{"v2", "o2"})).To(Succeed())
		Expect(s.Quiescent()).To(BeFalse())

		s.BeginRound()
		Expect(s.Quiescent()).To(BeTrue())
	})
})

var _ = Describe("Lookup", func() {
	It("should answer point queries", func() {
		l := LookupFunc[string, int](func(k string) (int, bool) {
			if k == "v1" {
				return 42, true
			}
			return 0, false
		})

		v, ok := l.Lookup("v1")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(42))

		_, ok = l.Lookup("v9")
		Expect(ok).To(BeFalse())
	})

	It("should fail explicitly on forbidden enumeration", func() {
		l := LookupFunc[string, int](func(k string) (int, bool) { return 1, true })
		e := NonEnumerable[string, int](l)

		v, ok := e.Lookup("anything")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))

		_, err := e.Enumerate()
		Expect(err).To(MatchError(ErrForbiddenOperation))
	})
})
