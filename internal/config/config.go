// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/mlerank/internal/domain/estimator"
	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Roster lists the competitor ids in matrix order.
	Roster []string `koanf:"roster"`

	// GamesFile is a YAML games file. Takes precedence over GamesURL.
	GamesFile string `koanf:"games_file"`

	// GamesURL is the base URL of a remote game data service.
	GamesURL string `koanf:"games_url"`

	// HTTPTimeoutMS bounds one remote fetch.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// SeasonKind is the default season kind (REG, POST, PRE).
	SeasonKind string `koanf:"season_kind"`

	MaxIterations int     `koanf:"max_iterations"`
	AbsTolerance  float64 `koanf:"abs_tolerance"`
	RelTolerance  float64 `koanf:"rel_tolerance"`

	// EstimationTimeoutMS caps one run end to end; 0 disables the cap.
	EstimationTimeoutMS int `koanf:"estimation_timeout_ms"`

	// BaseWeight and MarginWeight shape each win's contribution.
	BaseWeight   float64 `koanf:"base_weight"`
	MarginWeight float64 `koanf:"margin_weight"`

	// ZeroScorePolicy decides how 0-0 outcomes count: reject or minimal.
	ZeroScorePolicy string `koanf:"zero_score_policy"`

	// Workers bounds concurrent per-week estimations; 0 means one per CPU.
	Workers int `koanf:"workers"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		HTTPTimeoutMS:       10_000,
		SeasonKind:          model.KindRegular,
		MaxIterations:       estimator.DefaultMaxIterations,
		AbsTolerance:        estimator.DefaultAbsTolerance,
		RelTolerance:        estimator.DefaultRelTolerance,
		EstimationTimeoutMS: 30_000,
		BaseWeight:          scoring.DefaultBaseWeight,
		MarginWeight:        scoring.DefaultMarginWeight,
		ZeroScorePolicy:     string(scoring.PolicyReject),
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxIterations <= 0:
		return fmt.Errorf("%w: max_iterations must be positive", ErrInvalidConfig)
	case c.AbsTolerance <= 0 || c.RelTolerance <= 0:
		return fmt.Errorf("%w: tolerances must be positive", ErrInvalidConfig)
	case c.BaseWeight < 0 || c.MarginWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.HTTPTimeoutMS < 0 || c.EstimationTimeoutMS < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if _, err := scoring.ParseZeroScorePolicy(c.ZeroScorePolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := model.NewRoster(c.Roster); len(c.Roster) > 0 && err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch strings.ToUpper(c.SeasonKind) {
	case model.KindRegular, model.KindPostseason, model.KindPreseason:
	default:
		return fmt.Errorf("%w: unknown season_kind %q", ErrInvalidConfig, c.SeasonKind)
	}
	return nil
}

// HTTPTimeout returns HTTPTimeoutMS as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// EstimationTimeout returns EstimationTimeoutMS as a duration.
func (c *Config) EstimationTimeout() time.Duration {
	return time.Duration(c.EstimationTimeoutMS) * time.Millisecond
}
