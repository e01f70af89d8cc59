package estimator

import (
	"errors"
	"fmt"
)

// Sentinel kinds for estimator errors. ErrNonFinite is a kind of ErrConvergence.
var (
	ErrConvergence       = errors.New("ratings did not converge")
	ErrNonFinite         = fmt.Errorf("%w: weights became non-finite", ErrConvergence)
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidWeights    = errors.New("invalid initial weights")
)
