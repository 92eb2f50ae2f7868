package stats

import "errors"

var (
	// ErrInvalidInput reports malformed, empty or shape-mismatched inputs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateInput reports inputs for which a statistic is undefined,
	// e.g. a paired test where every difference is zero.
	ErrDegenerateInput = errors.New("degenerate input")
)
