package relation

import (
	"fmt"
	"math"
	"strings"
)

// Attribute is a named column bound to a domain.
type Attribute struct {
	Name   string
	Domain *Domain
}

func (a Attribute) String() string {
	return fmt.Sprintf("%s:%s", a.Name, a.Domain.Name())
}

// Signature is the ordered (attribute, domain) list declared once per
// relation. Every tuple or delta exchanged on a relation's queues must match
// its signature exactly. A signature also fixes the mixed-radix encoding that
// maps each tuple to a unique index in [0, Space()).
type Signature struct {
	attributes []Attribute
	// place[i] is the weight of attribute i in the mixed-radix encoding
	place []uint64
	space uint64
}

// NewSignature creates a signature from an ordered attribute list. Attribute
// names must be unique and the product of the domain sizes must fit the
// encoding.
func NewSignature(attributes ...Attribute) (*Signature, error) {
	if len(attributes) == 0 {
		return nil, fmt.Errorf("signature needs at least one attribute")
	}

	names := map[string]bool{}
	for _, a := range attributes {
		if a.Name == "" {
			return nil, fmt.Errorf("attribute with empty name")
		}
		if a.Domain == nil {
			return nil, fmt.Errorf("attribute %q has no domain", a.Name)
		}
		if names[a.Name] {
			return nil, fmt.Errorf("duplicate attribute %q", a.Name)
		}
		names[a.Name] = true
	}

	// Rightmost attribute varies fastest.
	place := make([]uint64, len(attributes))
	space := uint64(1)
	for i := len(attributes) - 1; i >= 0; i-- {
		place[i] = space
		size := uint64(attributes[i].Domain.Size())
		if space > math.MaxUint64/size {
			return nil, fmt.Errorf("tuple space of signature %s overflows the 64-bit encoding",
				attributeList(attributes))
		}
		space *= size
	}

	s := &Signature{
		attributes: make([]Attribute, len(attributes)),
		place:      place,
		space:      space,
	}
	copy(s.attributes, attributes)
	return s, nil
}

// Arity returns the number of attributes.
func (s *Signature) Arity() int { return len(s.attributes) }

// Attributes returns the ordered attribute list.
func (s *Signature) Attributes() []Attribute {
	ret := make([]Attribute, len(s.attributes))
	copy(ret, s.attributes)
	return ret
}

// Space returns the size of the tuple universe, i.e. the product of the domain
// sizes.
func (s *Signature) Space() uint64 { return s.space }

// Equal reports whether two signatures declare the same ordered attribute and
// domain lists. Domains are compared by name and size.
func (s *Signature) Equal(other *Signature) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.attributes) != len(other.attributes) {
		return false
	}
	for i, a := range s.attributes {
		b := other.attributes[i]
		if a.Name != b.Name || a.Domain.Name() != b.Domain.Name() ||
			a.Domain.Size() != b.Domain.Size() {
			return false
		}
	}
	return true
}

// Encode maps a tuple to its mixed-radix index. The tuple must assign a valid
// domain element to every attribute, in signature order.
func (s *Signature) Encode(t Tuple) (uint64, error) {
	if len(t) != len(s.attributes) {
		return 0, NewTupleError(
			fmt.Sprintf("arity %d does not match signature %s", len(t), s), nil)
	}

	var code uint64
	for i, a := range s.attributes {
		idx, err := a.Domain.Index(t[i])
		if err != nil {
			return 0, NewTupleError(fmt.Sprintf("attribute %q", a.Name), err)
		}
		code += uint64(idx) * s.place[i]
	}
	return code, nil
}

// Decode maps a mixed-radix index back to the tuple it encodes.
func (s *Signature) Decode(code uint64) (Tuple, error) {
	if code >= s.space {
		return nil, NewTupleError(
			fmt.Sprintf("code %d out of tuple space [0,%d)", code, s.space), nil)
	}

	t := make(Tuple, len(s.attributes))
	for i, a := range s.attributes {
		idx := code / s.place[i]
		code %= s.place[i]
		e, err := a.Domain.Element(int(idx))
		if err != nil {
			return nil, NewTupleError(fmt.Sprintf("attribute %q", a.Name), err)
		}
		t[i] = e
	}
	return t, nil
}

func (s *Signature) String() string {
	if s == nil {
		return "(<nil>)"
	}
	return attributeList(s.attributes)
}

func attributeList(attributes []Attribute) string {
	parts := make([]string, len(attributes))
	for i, a := range attributes {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Tuple is one concrete assignment of domain elements to a signature's
// attributes, in signature order.
type Tuple []string

func (t Tuple) String() string {
	return "(" + strings.Join(t, ", ") + ")"
}
