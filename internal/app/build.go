package service

import (
	"errors"
	"fmt"

	"github.com/okian/mlerank/internal/adapters/provider"
	"github.com/okian/mlerank/internal/config"
	"github.com/okian/mlerank/internal/domain/estimator"
	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/scoring"
	"github.com/okian/mlerank/pkg/logger"
)

// ErrNoGameSource is returned when neither games_file nor games_url is set.
var ErrNoGameSource = errors.New("no game source configured")

// NewFromConfig builds a Service and its game provider from cfg.
// A games file takes precedence over a games URL.
func NewFromConfig(cfg *config.Config, log logger.Logger) (*Service, error) {
	const op = "service.from_config"

	roster, err := model.NewRoster(cfg.Roster)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	policy, err := scoring.ParseZeroScorePolicy(cfg.ZeroScorePolicy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var games provider.Provider
	switch {
	case cfg.GamesFile != "":
		games = provider.NewFileProvider(cfg.GamesFile, provider.WithLogger(log.Named("provider")))
	case cfg.GamesURL != "":
		games = provider.NewHTTPProvider(cfg.GamesURL,
			provider.WithLogger(log.Named("provider")),
			provider.WithTimeout(cfg.HTTPTimeout()),
		)
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrNoGameSource)
	}

	return New(roster, games,
		WithLogger(log.Named("service")),
		WithScorer(scoring.NewMarginScorer(
			scoring.WithWeights(cfg.BaseWeight, cfg.MarginWeight),
			scoring.WithZeroScorePolicy(policy),
		)),
		WithEstimator(estimator.New(
			estimator.WithMaxIterations(cfg.MaxIterations),
			estimator.WithTolerance(cfg.AbsTolerance, cfg.RelTolerance),
		)),
		WithEstimationTimeout(cfg.EstimationTimeout()),
		WithWorkers(cfg.Workers),
	), nil
}
