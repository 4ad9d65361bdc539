package fec

import "errors"

// Error categories. Every error returned by this package wraps one of them.
var (
	// ErrConfiguration reports a malformed code or interleaver description,
	// detected when the object is constructed.
	ErrConfiguration = errors.New("fec: invalid configuration")
	// ErrUsage reports call arguments that do not fit the code, such as a
	// sequence length that is not a multiple of the stage width.
	ErrUsage = errors.New("fec: invalid input")
)

// DefaultMinusInf is the finite stand-in for -inf used for unreachable state
// metrics, empty soft-output maxima and known-zero tail LLRs.
const DefaultMinusInf = -1000.0
