package tomo

import "errors"

// Error taxonomy shared by all preprocessing stages. Entry points validate
// their parameters eagerly and fail fast with one of these sentinels,
// wrapped with context, before any expensive transform work starts.
var (
	// ErrInvalidParameter reports a bad slice index, a non-finite center,
	// an unknown filter axis or similar caller mistakes.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDecompositionTooDeep reports a wavelet decomposition level that
	// exceeds what the slice dimensions support.
	ErrDecompositionTooDeep = errors.New("decomposition too deep")

	// ErrNumericDegenerate reports a zero or negative histogram range, or
	// another numeric condition that would collapse a computation.
	ErrNumericDegenerate = errors.New("numerically degenerate input")
)
