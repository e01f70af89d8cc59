// Package service runs rating estimations for the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mlerank/internal/adapters/provider"
	"github.com/okian/mlerank/internal/domain/aggregate"
	"github.com/okian/mlerank/internal/domain/estimator"
	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/scoring"
	"github.com/okian/mlerank/internal/domain/types"
	"github.com/okian/mlerank/internal/worker"
	"github.com/okian/mlerank/pkg/logger"
	"github.com/okian/mlerank/pkg/metrics"
)

// Service turns a season selection into a ranking of the roster.
// Every call runs its own estimation; nothing is cached between calls.
type Service struct {
	roster    model.Roster
	games     provider.Provider
	scorer    scoring.Scorer
	estimator *estimator.Estimator
	timeout   time.Duration
	workers   int
	pool      *worker.Pool
	logger    logger.Logger

	mu    sync.RWMutex
	stats runStats
}

type runStats struct {
	runs       int64
	failed     int64
	lastRunID  string
	lastRunAt  time.Time
	lastGames  int
	lastIters  int
	lastState  string
	lastErrMsg string
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScorer sets the scorer used to weight each win.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithEstimator sets the estimator, e.g. one with a lower iteration cap.
func WithEstimator(e *estimator.Estimator) Option {
	return func(s *Service) {
		if e != nil {
			s.estimator = e
		}
	}
}

// WithEstimationTimeout bounds the wall-clock time of one run, fetch included.
func WithEstimationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithWorkers sets how many estimations Progression runs at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New constructs a Service over roster fed by games.
func New(roster model.Roster, games provider.Provider, opts ...Option) *Service {
	s := &Service{
		roster:    roster,
		games:     games,
		scorer:    scoring.NewMarginScorer(),
		estimator: estimator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.pool = worker.NewPool(
		worker.WithSize(s.workers),
		worker.WithName("estimation-pool"),
		worker.WithLogger(s.logger.Named("pool")),
	)
	metrics.UpdateRosterSize(roster.Len())
	return s
}

// Roster returns the competitors the service ranks.
func (s *Service) Roster() model.Roster { return s.roster }

// GenerateRankings returns every roster competitor's rating for sel.
func (s *Service) GenerateRankings(ctx context.Context, sel model.Selection) (map[string]float64, error) {
	r, err := s.run(ctx, sel)
	if err != nil {
		return nil, err
	}
	return r.Ratings(), nil
}

// Ranking returns the competitors ordered by descending rating.
func (s *Service) Ranking(ctx context.Context, sel model.Selection) (types.Ranking, error) {
	return s.run(ctx, sel)
}

// Rank returns one competitor's entry in the ranking for sel.
func (s *Service) Rank(ctx context.Context, sel model.Selection, competitor string) (types.Entry, error) {
	const op = "service.rank"
	if _, ok := s.roster.Index(competitor); !ok {
		return types.Entry{}, fmt.Errorf("%s: %w: %q", op, ErrNotFound, competitor)
	}
	r, err := s.run(ctx, sel)
	if err != nil {
		return types.Entry{}, err
	}
	e, ok := r.Find(competitor)
	if !ok {
		return types.Entry{}, fmt.Errorf("%s: %w: %q", op, ErrNotFound, competitor)
	}
	return e, nil
}

// Progression ranks every prefix of the selected weeks: the first ranking
// covers only the first week and the last covers all of them. With no weeks
// selected, the weeks that have games are used. Prefixes are estimated
// concurrently; any failure fails the whole call.
func (s *Service) Progression(ctx context.Context, sel model.Selection) ([]types.Ranking, error) {
	const op = "service.progression"
	ctx, cancel, games, err := s.fetch(ctx, op, &sel)
	defer cancel()
	if err != nil {
		return nil, err
	}

	weeks := slices.Clone(sel.Weeks)
	if len(weeks) == 0 {
		for _, g := range games {
			weeks = append(weeks, g.Week)
		}
	}
	slices.Sort(weeks)
	weeks = slices.Compact(weeks)

	out := make([]types.Ranking, len(weeks))
	tasks := make([]worker.Task, len(weeks))
	for k := range weeks {
		k := k
		n := k + 1
		prefix := model.Selection{Season: sel.Season, Weeks: weeks[:n:n], Kind: sel.Kind}
		tasks[k] = func(ctx context.Context) error {
			subset := make([]model.GameOutcome, 0, len(games))
			for _, g := range games {
				if prefix.Includes(g) {
					subset = append(subset, g)
				}
			}
			r, err := s.estimate(ctx, op, prefix, subset)
			if err != nil {
				return err
			}
			out[k] = r
			return nil
		}
	}
	if err := s.pool.Run(ctx, tasks); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) run(ctx context.Context, sel model.Selection) (types.Ranking, error) {
	const op = "service.ranking"
	ctx, cancel, games, err := s.fetch(ctx, op, &sel)
	defer cancel()
	if err != nil {
		return types.Ranking{}, err
	}
	return s.estimate(ctx, op, sel, games)
}

// fetch validates sel, applies the estimation timeout and loads its games.
// The returned cancel func must always be called.
func (s *Service) fetch(ctx context.Context, op string, sel *model.Selection) (context.Context, context.CancelFunc, []model.GameOutcome, error) {
	cancel := context.CancelFunc(func() {})
	if err := sel.Validate(); err != nil {
		return ctx, cancel, nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	games, err := s.games.Games(ctx, *sel)
	if err != nil {
		s.fail(ctx, uuid.NewString(), 0, 0, err)
		metrics.RecordErrorByComponent("provider", "fetch")
		return ctx, cancel, nil, fmt.Errorf("%s: %w", op, err)
	}
	return ctx, cancel, games, nil
}

// estimate aggregates games over the roster and iterates to a ranking.
func (s *Service) estimate(ctx context.Context, op string, sel model.Selection, games []model.GameOutcome) (types.Ranking, error) {
	runID := uuid.NewString()
	start := time.Now()

	matrix, wins, err := aggregate.New(s.roster, aggregate.WithScorer(s.scorer)).Aggregate(ctx, games)
	if err != nil {
		s.fail(ctx, runID, len(games), 0, err)
		metrics.RecordErrorByComponent("aggregate", "invalid_input")
		return types.Ranking{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.estimator.Iterate(ctx, matrix, wins, nil)
	metrics.RecordEstimation(res.State.String())
	metrics.RecordIterations(res.Iterations)
	metrics.RecordEstimationLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.fail(ctx, runID, len(games), res.Iterations, err)
		metrics.RecordErrorByComponent("estimator", "not_converged")
		return types.Ranking{}, fmt.Errorf("%s: %w", op, err)
	}

	entries := make([]types.Entry, s.roster.Len())
	for i := range entries {
		entries[i] = types.Entry{Competitor: s.roster.ID(i), Rating: res.Weights.AtVec(i)}
	}
	types.Sort(entries)

	ranking := types.Ranking{
		RunID:      runID,
		Season:     sel.Season,
		Weeks:      sel.Weeks,
		Kind:       sel.Kind,
		Games:      len(games),
		Iterations: res.Iterations,
		Entries:    entries,
	}

	s.mu.Lock()
	s.stats.runs++
	s.stats.lastRunID = runID
	s.stats.lastRunAt = start
	s.stats.lastGames = len(games)
	s.stats.lastIters = res.Iterations
	s.stats.lastState = res.State.String()
	s.stats.lastErrMsg = ""
	s.mu.Unlock()

	s.logger.Info(ctx, "estimation converged",
		logger.String("run_id", runID),
		logger.Int("season", sel.Season),
		logger.String("kind", sel.Kind),
		logger.Int("games", len(games)),
		logger.Int("iterations", res.Iterations),
		logger.Duration("took", time.Since(start)),
	)
	return ranking, nil
}

func (s *Service) fail(ctx context.Context, runID string, games, iterations int, err error) {
	s.mu.Lock()
	s.stats.runs++
	s.stats.failed++
	s.stats.lastRunID = runID
	s.stats.lastRunAt = time.Now()
	s.stats.lastGames = games
	s.stats.lastIters = iterations
	s.stats.lastState = estimator.StateFailed.String()
	s.stats.lastErrMsg = err.Error()
	s.mu.Unlock()

	s.logger.Error(ctx, "estimation failed",
		logger.String("run_id", runID),
		logger.Int("games", games),
		logger.Int("iterations", iterations),
		logger.Error(err),
	)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"rosterSize":    s.roster.Len(),
		"maxIterations": s.estimator.MaxIterations(),
		"timeoutMs":     s.timeout.Milliseconds(),
		"workers":       s.pool.Size(),
		"runs":          s.stats.runs,
		"failedRuns":    s.stats.failed,
	}
	if s.stats.runs > 0 {
		stats["lastRunId"] = s.stats.lastRunID
		stats["lastRunAt"] = s.stats.lastRunAt.UTC().Format(time.RFC3339)
		stats["lastGames"] = s.stats.lastGames
		stats["lastIterations"] = s.stats.lastIters
		stats["lastState"] = s.stats.lastState
		if s.stats.lastErrMsg != "" {
			stats["lastError"] = s.stats.lastErrMsg
		}
	}
	return stats
}
