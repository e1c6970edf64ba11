package relation

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Domain is the finite universe an attribute ranges over, e.g. the set of
// program variables or the set of types. Elements are identified by name and
// carry a dense integer encoding assigned in declaration order. Domains are
// immutable after construction.
type Domain struct {
	name     string
	elements []string
	index    map[string]int
}

// NewDomain creates a domain over the given elements. The element list must be
// non-empty and free of duplicates.
func NewDomain(name string, elements ...string) (*Domain, error) {
	if name == "" {
		return nil, NewDomainError(name, "empty domain name")
	}
	if len(elements) == 0 {
		return nil, NewDomainError(name, "no elements")
	}

	seen := sets.New[string]()
	index := make(map[string]int, len(elements))
	for i, e := range elements {
		if seen.Has(e) {
			return nil, NewDomainError(name, fmt.Sprintf("duplicate element %q", e))
		}
		seen.Insert(e)
		index[e] = i
	}

	d := &Domain{
		name:     name,
		elements: make([]string, len(elements)),
		index:    index,
	}
	copy(d.elements, elements)
	return d, nil
}

// Name returns the domain name.
func (d *Domain) Name() string { return d.name }

// Size returns the number of elements in the domain.
func (d *Domain) Size() int { return len(d.elements) }

// Contains reports whether the element belongs to the domain.
func (d *Domain) Contains(element string) bool {
	_, ok := d.index[element]
	return ok
}

// Index returns the dense encoding of an element.
func (d *Domain) Index(element string) (int, error) {
	i, ok := d.index[element]
	if !ok {
		return 0, NewElementError(d.name, element)
	}
	return i, nil
}

// Element returns the element with the given encoding.
func (d *Domain) Element(index int) (string, error) {
	if index < 0 || index >= len(d.elements) {
		return "", NewDomainError(d.name, fmt.Sprintf("index %d out of range [0,%d)", index, len(d.elements)))
	}
	return d.elements[index], nil
}

// Elements returns the elements in encoding order.
func (d *Domain) Elements() []string {
	ret := make([]string, len(d.elements))
	copy(ret, d.elements)
	return ret
}

func (d *Domain) String() string {
	return fmt.Sprintf("%s[%d]", d.name, len(d.elements))
}
