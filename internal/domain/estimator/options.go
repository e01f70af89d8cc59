package estimator

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithMaxIterations caps the number of fixed-point steps before a run fails.
func WithMaxIterations(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithTolerance sets the absolute and relative elementwise closeness bounds.
// Non-positive values keep the defaults.
func WithTolerance(abs, rel float64) Option {
	return func(e *Estimator) {
		if abs > 0 {
			e.absTol = abs
		}
		if rel > 0 {
			e.relTol = rel
		}
	}
}
