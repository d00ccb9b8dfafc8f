package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Standardization errors
	ErrDegenerateColumn    = errors.New("degenerate column: zero dispersion")
	ErrMissingGrouping     = errors.New("model carries no grouping structure")
	ErrMissingDesignMatrix = errors.New("model exposes no design matrix")
	ErrUnsupportedTerm     = errors.New("term role not supported by method")
	ErrUnknownMethod       = errors.New("unknown standardization method")

	// Refit errors
	ErrRefit         = errors.New("refit failed")
	ErrFitterMissing = errors.New("no fitting collaborator configured")

	// Effect-size errors
	ErrIncompatibleModels = errors.New("models not fit on the same observations")
	ErrInsufficientData   = errors.New("insufficient data for analysis")

	// Lookup errors
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrTermNotFound   = fmt.Errorf("%w: term", ErrNotFound)
)

// Error constructors with context
func NewDegenerateColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateColumn, column)
}

func NewUnsupportedTermError(term, method string) error {
	return fmt.Errorf("%w: term %s under method %s", ErrUnsupportedTerm, term, method)
}

func NewRefitError(err error) error {
	return fmt.Errorf("%w: %v", ErrRefit, err)
}

func NewIncompatibleModelsError(reason string) error {
	return fmt.Errorf("%w: %s", ErrIncompatibleModels, reason)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsDegenerateColumnError(err error) bool {
	return errors.Is(err, ErrDegenerateColumn)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTermError reports whether an error is scoped to a single term. Term-scoped
// errors must not abort standardization of unrelated terms.
func IsTermError(err error) bool {
	return errors.Is(err, ErrDegenerateColumn) ||
		errors.Is(err, ErrUnsupportedTerm)
}

// IsRequestFatalError reports whether an error invalidates the whole request.
func IsRequestFatalError(err error) bool {
	return errors.Is(err, ErrRefit) ||
		errors.Is(err, ErrMissingGrouping) ||
		errors.Is(err, ErrMissingDesignMatrix) ||
		errors.Is(err, ErrUnknownMethod)
}
