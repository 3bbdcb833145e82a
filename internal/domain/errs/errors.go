// Package errs defines the error taxonomy shared by the domain packages.
// Callers classify failures with errors.Is against the three base kinds.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — unknown product/recipe/client/order/step id.
	ErrNotFound = errors.New("taller: not found")

	// ErrInvalidInput — invalid numeric or enum input (non-positive yield,
	// non-positive grams/amount, unrecognized material kind, ...).
	ErrInvalidInput = errors.New("taller: invalid input")

	// ErrInvariant — an operation that would break a state-machine rule,
	// e.g. restarting a finished production step.
	ErrInvariant = errors.New("taller: invariant violation")

	// ErrAlreadyExists — duplicate identity on create (SKU, recipe per product).
	ErrAlreadyExists = errors.New("taller: already exists")
)

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalidf wraps ErrInvalidInput with context.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Invariantf wraps ErrInvariant with context.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
