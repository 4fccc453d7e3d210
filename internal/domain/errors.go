package domain

import "errors"

// Failure classes. Errors produced by the analyzer wrap exactly one of these
// (a structured-block JSON failure wraps both ErrParse and ErrStructuralMismatch)
// so callers can classify them with errors.Is.
var (
	// ErrExtraction means a required block is absent or no known pattern matched
	ErrExtraction = errors.New("extraction failure")
	// ErrStructuralMismatch means the page is internally inconsistent
	// (parallel arrays of unequal length, malformed JSON)
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrValidation means the input does not satisfy a precondition
	// (too few points, non-positive values, degenerate variance, zero elapsed time)
	ErrValidation = errors.New("validation failure")
	// ErrComputation means a formula produced NaN or Inf despite valid inputs
	ErrComputation = errors.New("computation failure")
	// ErrParse means a structured block was present but yielded no usable entries
	ErrParse = errors.New("parse failure")
	// ErrFetch means the page for a fund could not be retrieved
	ErrFetch = errors.New("fetch failure")
	// ErrInvalidFundCode means a fund code is not 2-5 alphanumeric characters
	ErrInvalidFundCode = errors.New("invalid fund code")
)
