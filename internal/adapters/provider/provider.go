// Package provider supplies game outcomes for a season selection.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/mlerank/internal/domain/dedupe"
	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/pkg/logger"
	"github.com/okian/mlerank/pkg/metrics"
)

// Provider returns the outcomes of every game inside sel.
type Provider interface {
	Games(ctx context.Context, sel model.Selection) ([]model.GameOutcome, error)
}

// collect keeps the games inside sel and drops repeated game ids.
// Games without an id are always kept.
func collect(ctx context.Context, log logger.Logger, games []model.GameOutcome, sel model.Selection) []model.GameOutcome {
	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(games)))
	out := make([]model.GameOutcome, 0, len(games))
	for _, g := range games {
		if !sel.Includes(g) {
			continue
		}
		if g.ID != "" && seen.SeenAndRecord(ctx, g.ID) {
			metrics.RecordDuplicateGame()
			log.Debug(ctx, "dropping duplicate game", logger.String("game", g.ID))
			continue
		}
		out = append(out, g)
	}
	return out
}

// observe records one fetch. Call it deferred with a pointer to the named error result.
func observe(name string, start time.Time, err *error) {
	result := "ok"
	if *err != nil {
		result = "error"
	}
	metrics.RecordProviderFetch(name, result, float64(time.Since(start).Milliseconds()))
}

func validate(op string, sel *model.Selection) error {
	if err := sel.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MemoryProvider serves a fixed list of games.
type MemoryProvider struct {
	games []model.GameOutcome
	log   logger.Logger
}

// NewMemoryProvider copies games into a provider.
func NewMemoryProvider(games []model.GameOutcome, opts ...Option) *MemoryProvider {
	o := newOptions(opts)
	return &MemoryProvider{games: append([]model.GameOutcome(nil), games...), log: o.logger}
}

// Games implements Provider.
func (p *MemoryProvider) Games(ctx context.Context, sel model.Selection) (out []model.GameOutcome, err error) {
	defer observe("memory", time.Now(), &err)
	if err = validate("provider.memory", &sel); err != nil {
		return nil, err
	}
	return collect(ctx, p.log, p.games, sel), nil
}
