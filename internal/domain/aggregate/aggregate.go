// Package aggregate folds game outcomes into the pairwise-meeting matrix and
// the margin-weighted win vector consumed by the rating estimator.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/scoring"
	"github.com/okian/mlerank/pkg/metrics"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithScorer sets the scorer that weights each win.
func WithScorer(s scoring.Scorer) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// Aggregator builds matrices over a fixed roster.
type Aggregator struct {
	roster model.Roster
	scorer scoring.Scorer
}

// New creates an aggregator for roster using the default margin scorer.
func New(roster model.Roster, opts ...Option) *Aggregator {
	a := &Aggregator{
		roster: roster,
		scorer: scoring.NewMarginScorer(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Roster returns the roster the aggregator indexes by.
func (a *Aggregator) Roster() model.Roster { return a.roster }

// Aggregate returns the meeting matrix and win vector for outcomes.
//
// The matrix is seeded with 1 on the diagonal; every outcome adds one
// meeting to the winner/loser pair. The win vector sums each winner's
// scorer contributions. Any invalid outcome fails the whole call.
func (a *Aggregator) Aggregate(ctx context.Context, outcomes []model.GameOutcome) (*mat.SymDense, *mat.VecDense, error) {
	const op = "aggregate"
	n := a.roster.Len()
	if n == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, model.ErrInvalidRoster)
	}

	games := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		games.SetSym(i, i, 1)
	}
	wins := mat.NewVecDense(n, nil)

	for _, g := range outcomes {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		w, ok := a.roster.Index(g.Winner)
		if !ok {
			metrics.RecordAggregationError("unknown_competitor")
			return nil, nil, fmt.Errorf("%s: %w %q in game %s", op, ErrUnknownCompetitor, g.Winner, g.ID)
		}
		l, ok := a.roster.Index(g.Loser)
		if !ok {
			metrics.RecordAggregationError("unknown_competitor")
			return nil, nil, fmt.Errorf("%s: %w %q in game %s", op, ErrUnknownCompetitor, g.Loser, g.ID)
		}
		if w == l {
			metrics.RecordAggregationError("self_play")
			return nil, nil, fmt.Errorf("%s: %w: %q cannot play itself in game %s", op, ErrInvalidOutcome, g.Winner, g.ID)
		}

		c, err := a.scorer.Contribution(g)
		if err != nil {
			metrics.RecordAggregationError(errorKind(err))
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		games.SetSym(w, l, games.At(w, l)+1)
		wins.SetVec(w, wins.AtVec(w)+c)
	}

	metrics.AddGamesAggregated(len(outcomes))
	return games, wins, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, scoring.ErrDegenerateScore):
		return "degenerate_score"
	case errors.Is(err, scoring.ErrNegativeScore):
		return "negative_score"
	default:
		return "scoring"
	}
}
