// Package scoring turns a single game outcome into its margin-weighted
// contribution to the winner's win total.
package scoring

import (
	"fmt"
	"strings"

	"github.com/okian/mlerank/internal/domain/model"
)

// Default weighting: every win is worth at least DefaultBaseWeight and a
// shutout adds the full DefaultMarginWeight on top.
const (
	DefaultBaseWeight   = 0.6
	DefaultMarginWeight = 0.4
)

// ZeroScorePolicy decides what a 0-0 outcome is worth, since the margin
// fraction is undefined there.
type ZeroScorePolicy string

const (
	// PolicyReject fails the outcome with ErrDegenerateScore.
	PolicyReject ZeroScorePolicy = "reject"
	// PolicyMinimal credits the base weight only, as a zero-margin win.
	PolicyMinimal ZeroScorePolicy = "minimal"
)

// ParseZeroScorePolicy maps a configuration string onto a policy.
func ParseZeroScorePolicy(s string) (ZeroScorePolicy, error) {
	switch p := ZeroScorePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyReject, nil
	case PolicyReject, PolicyMinimal:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Option applies a configuration option to the MarginScorer.
type Option func(*MarginScorer)

// WithWeights overrides the base and margin weights. Negative values are ignored.
func WithWeights(base, margin float64) Option {
	return func(s *MarginScorer) {
		if base >= 0 {
			s.base = base
		}
		if margin >= 0 {
			s.margin = margin
		}
	}
}

// WithZeroScorePolicy sets how 0-0 outcomes are treated.
func WithZeroScorePolicy(p ZeroScorePolicy) Option {
	return func(s *MarginScorer) {
		if p != "" {
			s.policy = p
		}
	}
}

// Scorer computes the win-vector contribution of one outcome.
type Scorer interface {
	Contribution(g model.GameOutcome) (float64, error)
}

// MarginScorer implements Scorer as base + margin * |sw - sl| / (sw + sl).
type MarginScorer struct {
	base   float64
	margin float64
	policy ZeroScorePolicy
}

// NewMarginScorer creates a scorer with the default weights and the reject policy.
func NewMarginScorer(opts ...Option) *MarginScorer {
	s := &MarginScorer{
		base:   DefaultBaseWeight,
		margin: DefaultMarginWeight,
		policy: PolicyReject,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the configured zero score policy.
func (s *MarginScorer) Policy() ZeroScorePolicy { return s.policy }

// Contribution returns the weighted value of g for its winner.
func (s *MarginScorer) Contribution(g model.GameOutcome) (float64, error) {
	if g.WinnerScore < 0 || g.LoserScore < 0 {
		return 0, fmt.Errorf("%w: game %s %d-%d", ErrNegativeScore, g.ID, g.WinnerScore, g.LoserScore)
	}
	total := g.Total()
	if total == 0 {
		if s.policy == PolicyMinimal {
			return s.base, nil
		}
		return 0, fmt.Errorf("%w: game %s", ErrDegenerateScore, g.ID)
	}
	return s.base + s.margin*(float64(g.Margin())/float64(total)), nil
}
