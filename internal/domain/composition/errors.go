package composition

import "github.com/turtacn/ChemHammer/pkg/errors"

var (
	// ErrMalformedFormula is returned for unbalanced brackets, a closer with
	// no opener, or an unreadable numeric literal.
	ErrMalformedFormula = errors.New(errors.CodeMalformedFormula, "malformed formula")

	// ErrEmptyComposition is returned when a formula sums to zero atoms.
	ErrEmptyComposition = errors.New(errors.CodeEmptyComposition, "empty composition")

	// ErrInvalidComposition is returned when externally supplied counts or
	// entries are negative, non-finite or out of order.
	ErrInvalidComposition = errors.New(errors.CodeInvalidDistribution, "invalid composition")
)
