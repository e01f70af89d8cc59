package estimator_test

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/okian/mlerank/internal/domain/aggregate"
	"github.com/okian/mlerank/internal/domain/estimator"
	"github.com/okian/mlerank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func schedule(ids string, games ...model.GameOutcome) (*mat.SymDense, *mat.VecDense) {
	roster := make([]string, 0, len(ids))
	for _, r := range ids {
		roster = append(roster, string(r))
	}
	r, err := model.NewRoster(roster)
	if err != nil {
		panic(err)
	}
	m, w, err := aggregate.New(r).Aggregate(context.Background(), games)
	if err != nil {
		panic(err)
	}
	return m, w
}

func beat(winner, loser string, ws, ls int) model.GameOutcome {
	return model.GameOutcome{ID: winner + "-" + loser, Winner: winner, Loser: loser, WinnerScore: ws, LoserScore: ls}
}

func TestStep(t *testing.T) {
	Convey("Given a two competitor schedule where A beat B once", t, func() {
		games := mat.NewSymDense(2, []float64{1, 1, 1, 1})
		wins := mat.NewVecDense(2, []float64{1, 0})

		Convey("When stepping from all ones", func() {
			next := estimator.Step(mat.NewVecDense(2, []float64{1, 1}), games, wins)

			Convey("Then each weight is wins over the summed meeting terms", func() {
				So(next.AtVec(0), ShouldAlmostEqual, 1.0, 1e-15)
				So(next.AtVec(1), ShouldEqual, 0)
			})
		})
	})

	Convey("Given weights where one competitor has no positive pair sums", t, func() {
		games := mat.NewSymDense(2, []float64{1, 0, 0, 1})
		wins := mat.NewVecDense(2, []float64{0.5, 0.7})
		weights := mat.NewVecDense(2, []float64{0, 1})

		Convey("When stepping", func() {
			next := estimator.Step(weights, games, wins)

			Convey("Then the degenerate weight is left unchanged", func() {
				So(next.AtVec(0), ShouldEqual, 0)
				So(next.AtVec(1), ShouldAlmostEqual, 1.4, 1e-15)
			})

			Convey("And the input vector is not mutated", func() {
				So(weights.AtVec(1), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a three competitor schedule", t, func() {
		games, wins := schedule("ABC", beat("A", "B", 20, 10), beat("A", "C", 20, 10), beat("B", "C", 20, 10))
		weights := mat.NewVecDense(3, []float64{2, 1, 0.5})

		Convey("Then every entry is computed from the previous vector", func() {
			next := estimator.Step(weights, games, wins)
			// A: wins 2*(0.6+0.4/3) over 1/4 + 1/3 + 1/2.5
			So(next.AtVec(0), ShouldAlmostEqual, 2*(0.6+0.4/3)/(1.0/4+1.0/3+1.0/2.5), 1e-12)
			// C never won.
			So(next.AtVec(2), ShouldEqual, 0)
		})
	})
}

func TestEstimator_Iterate(t *testing.T) {
	Convey("Given a default estimator", t, func() {
		ctx := context.Background()
		est := estimator.New()

		Convey("When three competitors form a closed cycle with equal margins", func() {
			games, wins := schedule("ABC", beat("A", "B", 20, 10), beat("B", "C", 20, 10), beat("C", "A", 20, 10))
			res, err := est.Iterate(ctx, games, wins, nil)

			Convey("Then they converge to equal ratings", func() {
				So(err, ShouldBeNil)
				So(res.State, ShouldEqual, estimator.StateConverged)
				So(res.Weights.AtVec(0), ShouldAlmostEqual, res.Weights.AtVec(1), 1e-12)
				So(res.Weights.AtVec(1), ShouldAlmostEqual, res.Weights.AtVec(2), 1e-12)
			})
		})

		Convey("When A beat B 30-0 and nothing else was played", func() {
			games, wins := schedule("AB", beat("A", "B", 30, 0))
			res, err := est.Iterate(ctx, games, wins, nil)

			Convey("Then A is rated above B", func() {
				So(err, ShouldBeNil)
				So(res.State, ShouldEqual, estimator.StateConverged)
				So(res.Weights.AtVec(0), ShouldBeGreaterThan, res.Weights.AtVec(1))
				So(res.Weights.AtVec(1), ShouldEqual, 0)
			})
		})

		Convey("When the schedule is a strict hierarchy", func() {
			games, wins := schedule("ABCD",
				beat("A", "B", 21, 14), beat("A", "C", 21, 14), beat("A", "D", 21, 14),
				beat("B", "C", 21, 14), beat("B", "D", 21, 14), beat("C", "D", 21, 14),
			)
			res, err := est.Iterate(ctx, games, wins, nil)
			So(err, ShouldBeNil)

			Convey("Then ratings follow the hierarchy", func() {
				w := res.Weights
				So(w.AtVec(0), ShouldBeGreaterThan, w.AtVec(1))
				So(w.AtVec(1), ShouldBeGreaterThan, w.AtVec(2))
				So(w.AtVec(2), ShouldBeGreaterThan, w.AtVec(3))
				So(res.Iterations, ShouldBeLessThan, estimator.DefaultMaxIterations)
			})

			Convey("And the converged vector is a fixed point of Step", func() {
				again := estimator.Step(res.Weights, games, wins)
				for i := 0; i < again.Len(); i++ {
					So(scalar.EqualWithinAbsOrRel(again.AtVec(i), res.Weights.AtVec(i),
						estimator.DefaultAbsTolerance, estimator.DefaultRelTolerance), ShouldBeTrue)
				}
			})

			Convey("And every rating is non-negative", func() {
				for i := 0; i < res.Weights.Len(); i++ {
					So(res.Weights.AtVec(i), ShouldBeGreaterThanOrEqualTo, 0)
				}
			})
		})

		Convey("When a roster member never played", func() {
			games, wins := schedule("ABE", beat("A", "B", 21, 14), beat("B", "A", 17, 10))
			res, err := est.Iterate(ctx, games, wins, nil)

			Convey("Then the run still converges and the idle member rates zero", func() {
				So(err, ShouldBeNil)
				So(res.Weights.AtVec(2), ShouldEqual, 0)
				So(res.Weights.AtVec(0), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the initial weights are all zero", func() {
			games, wins := schedule("AB", beat("A", "B", 3, 0))
			res, err := est.Iterate(ctx, games, wins, mat.NewVecDense(2, nil))

			Convey("Then the seed is already converged", func() {
				So(err, ShouldBeNil)
				So(res.Iterations, ShouldEqual, 0)
				So(res.Weights.AtVec(0), ShouldEqual, 0)
			})
		})

		Convey("When custom initial weights are supplied", func() {
			games, wins := schedule("AB", beat("A", "B", 3, 0))
			initial := mat.NewVecDense(2, []float64{5, 5})
			res, err := est.Iterate(ctx, games, wins, initial)

			Convey("Then the run converges without touching the caller's vector", func() {
				So(err, ShouldBeNil)
				So(res.State, ShouldEqual, estimator.StateConverged)
				So(initial.AtVec(0), ShouldEqual, 5)
				So(initial.AtVec(1), ShouldEqual, 5)
			})
		})

		Convey("When inputs disagree on the roster size", func() {
			games, _ := schedule("AB", beat("A", "B", 3, 0))
			_, err := est.Iterate(ctx, games, mat.NewVecDense(3, nil), nil)
			So(errors.Is(err, estimator.ErrDimensionMismatch), ShouldBeTrue)

			res, err := est.Iterate(ctx, games, mat.NewVecDense(2, nil), mat.NewVecDense(1, []float64{1}))
			So(errors.Is(err, estimator.ErrDimensionMismatch), ShouldBeTrue)
			So(res.State, ShouldEqual, estimator.StateFailed)
		})

		Convey("When an initial weight is negative", func() {
			games, wins := schedule("AB", beat("A", "B", 3, 0))
			_, err := est.Iterate(ctx, games, wins, mat.NewVecDense(2, []float64{1, -1}))
			So(errors.Is(err, estimator.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			games, wins := schedule("AB", beat("A", "B", 3, 0))
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := est.Iterate(cctx, games, wins, nil)

			Convey("Then the run fails with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(res.State, ShouldEqual, estimator.StateFailed)
				So(res.Weights, ShouldBeNil)
			})
		})
	})

	Convey("Given a schedule whose weights grow without bound", t, func() {
		// A lone competitor credited one win against its own diagonal seed
		// doubles every step.
		games := mat.NewSymDense(1, []float64{1})
		wins := mat.NewVecDense(1, []float64{1})

		Convey("When the iteration cap is small", func() {
			res, err := estimator.New(estimator.WithMaxIterations(50)).Iterate(context.Background(), games, wins, nil)

			Convey("Then the run fails with a convergence error at the cap", func() {
				So(errors.Is(err, estimator.ErrConvergence), ShouldBeTrue)
				So(res.State, ShouldEqual, estimator.StateFailed)
				So(res.Iterations, ShouldEqual, 50)
				So(res.Weights, ShouldBeNil)
			})
		})

		Convey("When the cap is large enough for the weights to overflow", func() {
			res, err := estimator.New().Iterate(context.Background(), games, wins, nil)

			Convey("Then overflow is reported instead of a false convergence", func() {
				So(errors.Is(err, estimator.ErrNonFinite), ShouldBeTrue)
				So(res.State, ShouldEqual, estimator.StateFailed)
				So(res.Iterations, ShouldEqual, 1024)
			})

			Convey("And the failure is still a convergence failure", func() {
				So(errors.Is(err, estimator.ErrConvergence), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bounded schedule that needs more steps than the cap allows", t, func() {
		games, wins := schedule("ABCD",
			beat("A", "B", 21, 14), beat("A", "C", 21, 14), beat("A", "D", 21, 14),
			beat("B", "C", 21, 14), beat("B", "D", 21, 14), beat("C", "D", 21, 14),
		)

		Convey("When the cap is three steps", func() {
			res, err := estimator.New(estimator.WithMaxIterations(3)).Iterate(context.Background(), games, wins, nil)

			Convey("Then the run fails as not converged while every weight stays finite", func() {
				So(errors.Is(err, estimator.ErrConvergence), ShouldBeTrue)
				So(errors.Is(err, estimator.ErrNonFinite), ShouldBeFalse)
				So(res.State, ShouldEqual, estimator.StateFailed)
				So(res.Iterations, ShouldEqual, 3)
				So(res.Weights, ShouldBeNil)
			})
		})

		Convey("When the default cap is used", func() {
			res, err := estimator.New().Iterate(context.Background(), games, wins, nil)
			So(err, ShouldBeNil)
			So(res.Iterations, ShouldBeGreaterThan, 3)
		})
	})
}

func TestEstimatorOptions(t *testing.T) {
	Convey("Given estimator options", t, func() {
		So(estimator.New().MaxIterations(), ShouldEqual, estimator.DefaultMaxIterations)
		So(estimator.New(estimator.WithMaxIterations(7)).MaxIterations(), ShouldEqual, 7)
		So(estimator.New(estimator.WithMaxIterations(-1)).MaxIterations(), ShouldEqual, estimator.DefaultMaxIterations)

		Convey("When the absolute tolerance is loosened", func() {
			games, wins := schedule("AB", beat("A", "B", 30, 0))
			loose, err := estimator.New(estimator.WithTolerance(1e-3, 0)).Iterate(context.Background(), games, wins, nil)
			So(err, ShouldBeNil)
			strict, err := estimator.New().Iterate(context.Background(), games, wins, nil)
			So(err, ShouldBeNil)

			Convey("Then convergence is declared sooner", func() {
				So(loose.Iterations, ShouldBeLessThan, strict.Iterations)
			})
		})
	})

	Convey("Given the lifecycle states", t, func() {
		So(estimator.StateInitialized.String(), ShouldEqual, "initialized")
		So(estimator.StateIterating.String(), ShouldEqual, "iterating")
		So(estimator.StateConverged.String(), ShouldEqual, "converged")
		So(estimator.StateFailed.String(), ShouldEqual, "failed")
		So(estimator.State(9).String(), ShouldEqual, "state(9)")
	})
}
