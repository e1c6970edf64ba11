package network

import (
	"errors"
	"fmt"
)

// ErrForbiddenOperation reports the invocation of an operation that exists
// only to satisfy a structural contract and must never be exercised. Failing
// explicitly beats returning a misleading default.
var ErrForbiddenOperation = errors.New("forbidden operation")

type ErrConfig = error

func NewConfigError(message string, err error) ErrConfig {
	if err != nil {
		return fmt.Errorf("invalid network config: %s: %w", message, err)
	}
	return fmt.Errorf("invalid network config: %s", message)
}

type ErrDuplicate = error

func NewDuplicateError(kind, name string) ErrDuplicate {
	return fmt.Errorf("duplicate %s %q", kind, name)
}

type ErrNotFound = error

func NewNotFoundError(kind, name string) ErrNotFound {
	return fmt.Errorf("%s %q not declared in session", kind, name)
}
