// Package estimator computes Bradley-Terry rating weights by fixed-point
// iteration over a pairwise-meeting matrix and a win vector.
//
// One step maps weights w to w' with
//
//	w'[i] = wins[i] / sum_j games[i][j] / (w[i] + w[j])
//
// where pairs with w[i]+w[j] <= 0 are skipped and a competitor whose sum is
// not positive keeps its previous weight. All entries of w' are computed from
// the same w.
package estimator

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Defaults mirror the usual floating-point closeness test.
const (
	DefaultMaxIterations = 10_000
	DefaultAbsTolerance  = 1e-8
	DefaultRelTolerance  = 1e-5
)

// State is the lifecycle of one Iterate call.
type State int

const (
	StateInitialized State = iota
	StateIterating
	StateConverged
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the outcome of Iterate. Weights is nil unless State is StateConverged.
type Result struct {
	Weights    *mat.VecDense
	Iterations int
	State      State
}

// Estimator runs the bounded fixed-point iteration.
type Estimator struct {
	maxIterations int
	absTol        float64
	relTol        float64
}

// New creates an Estimator with the default cap and tolerances.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		maxIterations: DefaultMaxIterations,
		absTol:        DefaultAbsTolerance,
		relTol:        DefaultRelTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxIterations returns the configured step cap.
func (e *Estimator) MaxIterations() int { return e.maxIterations }

// Step applies one simultaneous update to weights and returns a new vector.
func Step(weights mat.Vector, games mat.Symmetric, wins mat.Vector) *mat.VecDense {
	next, _ := step(weights, games, wins)
	return next
}

// step is Step that also reports whether every pairwise weight sum stayed
// finite. An overflowing sum contributes nothing to the denominator, which
// would otherwise freeze a diverging weight and look like convergence.
func step(weights mat.Vector, games mat.Symmetric, wins mat.Vector) (*mat.VecDense, bool) {
	n := weights.Len()
	next := mat.NewVecDense(n, nil)
	finite := true
	for i := 0; i < n; i++ {
		wi := weights.AtVec(i)
		denom := 0.0
		for j := 0; j < n; j++ {
			s := wi + weights.AtVec(j)
			if math.IsInf(s, 0) || math.IsNaN(s) {
				finite = false
			}
			if s > 0 {
				denom += games.At(i, j) / s
			}
		}
		if denom > 0 {
			next.SetVec(i, wins.AtVec(i)/denom)
		} else {
			next.SetVec(i, wi)
		}
	}
	return next, finite
}

// Iterate steps from initial (all ones when nil) until two successive
// vectors are elementwise close, and returns the later one.
//
// It fails with ErrConvergence once the step cap is reached, with
// ErrNonFinite if a weight overflows or becomes NaN, and with the context's
// error if ctx ends first. initial is not modified.
func (e *Estimator) Iterate(ctx context.Context, games mat.Symmetric, wins mat.Vector, initial mat.Vector) (Result, error) {
	const op = "estimator.iterate"
	res := Result{State: StateInitialized}

	n := games.SymmetricDim()
	if wins.Len() != n {
		res.State = StateFailed
		return res, fmt.Errorf("%s: %w: %d competitors, %d win entries", op, ErrDimensionMismatch, n, wins.Len())
	}

	next := mat.NewVecDense(n, nil)
	if initial == nil {
		for i := 0; i < n; i++ {
			next.SetVec(i, 1)
		}
	} else {
		if initial.Len() != n {
			res.State = StateFailed
			return res, fmt.Errorf("%s: %w: %d competitors, %d initial weights", op, ErrDimensionMismatch, n, initial.Len())
		}
		for i := 0; i < n; i++ {
			v := initial.AtVec(i)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				res.State = StateFailed
				return res, fmt.Errorf("%s: %w: weight %d is %v", op, ErrInvalidWeights, i, v)
			}
			next.SetVec(i, v)
		}
	}
	current := mat.NewVecDense(n, nil)

	res.State = StateIterating
	for !e.close(current, next) {
		if res.Iterations >= e.maxIterations {
			res.State = StateFailed
			return res, fmt.Errorf("%s: %w after %d iterations", op, ErrConvergence, res.Iterations)
		}
		if err := ctx.Err(); err != nil {
			res.State = StateFailed
			return res, fmt.Errorf("%s: after %d iterations: %w", op, res.Iterations, err)
		}
		stepped, finite := step(next, games, wins)
		current, next = next, stepped
		res.Iterations++
		if !finite {
			res.State = StateFailed
			return res, fmt.Errorf("%s: %w: weight sum overflowed at iteration %d", op, ErrNonFinite, res.Iterations)
		}
		if i, ok := firstNonFinite(next); ok {
			res.State = StateFailed
			return res, fmt.Errorf("%s: %w: weight %d is %v at iteration %d", op, ErrNonFinite, i, next.AtVec(i), res.Iterations)
		}
	}

	res.State = StateConverged
	res.Weights = next
	return res, nil
}

func (e *Estimator) close(a, b *mat.VecDense) bool {
	for i := 0; i < a.Len(); i++ {
		if !scalar.EqualWithinAbsOrRel(a.AtVec(i), b.AtVec(i), e.absTol, e.relTol) {
			return false
		}
	}
	return true
}

func firstNonFinite(v *mat.VecDense) (int, bool) {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); math.IsNaN(x) || math.IsInf(x, 0) {
			return i, true
		}
	}
	return 0, false
}
