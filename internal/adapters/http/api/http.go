// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/types"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Ranking(ctx context.Context, sel model.Selection) (types.Ranking, error)
	Rank(ctx context.Context, sel model.Selection, competitor string) (types.Entry, error)
	Progression(ctx context.Context, sel model.Selection) ([]types.Ranking, error)
}

// Server wires HTTP routes for the ranking API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rankingsHandler *RankingsHandler
	rankHandler     *RankHandler
}

type serverOptions struct {
	defaultKind string
}

// Option configures the Server.
type Option func(*serverOptions)

// WithDefaultKind sets the season kind used when a request omits ?kind.
func WithDefaultKind(kind string) Option {
	return func(o *serverOptions) {
		if kind = strings.TrimSpace(kind); kind != "" {
			o.defaultKind = kind
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{defaultKind: model.KindRegular}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		rankingsHandler: NewRankingsHandler(deps, o.defaultKind),
		rankHandler:     NewRankHandler(deps, o.defaultKind),
	}
}

// Routes returns the router serving every endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	r.Get("/rankings/progression", MetricsMiddleware(s.rankingsHandler.HandleGetProgression, "progression"))
	r.Get("/rank/{competitor}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	return r
}

// parseSelection reads ?season=2017&weeks=1-4,9&kind=REG.
func parseSelection(r *http.Request, defaultKind string) (model.Selection, error) {
	query := r.URL.Query()
	season, err := strconv.Atoi(query.Get("season"))
	if err != nil {
		return model.Selection{}, fmt.Errorf("%w: season must be an integer", ErrBadRequest)
	}
	weeks, err := model.ParseWeeks(query.Get("weeks"))
	if err != nil {
		return model.Selection{}, err
	}
	kind := query.Get("kind")
	if kind == "" {
		kind = defaultKind
	}
	sel := model.Selection{Season: season, Weeks: weeks, Kind: kind}
	if err := sel.Validate(); err != nil {
		return model.Selection{}, err
	}
	return sel, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure writes err with the status its kind maps to.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
