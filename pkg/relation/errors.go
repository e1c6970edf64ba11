package relation

import (
	"errors"
	"fmt"
)

// ErrSignatureMismatch reports that a tuple or relation does not match the
// signature it is being combined with. Mismatches are always rejected at the
// boundary call: silently coercing attributes would corrupt the relation and
// every derived relation downstream.
var ErrSignatureMismatch = errors.New("signature mismatch")

type ErrDomain = error

func NewDomainError(domain, message string) ErrDomain {
	return fmt.Errorf("domain %q: %s", domain, message)
}

type ErrElement = error

func NewElementError(domain, element string) ErrElement {
	return fmt.Errorf("element %q not in domain %q", element, domain)
}

type ErrTuple = error

func NewTupleError(message string, err error) ErrTuple {
	if err != nil {
		return fmt.Errorf("invalid tuple: %s: %w", message, err)
	}
	return fmt.Errorf("invalid tuple: %s", message)
}

func NewSignatureMismatchError(expected, got *Signature) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrSignatureMismatch, expected, got)
}
