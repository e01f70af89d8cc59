package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/mlerank/internal/adapters/provider"
	service "github.com/okian/mlerank/internal/app"
	"github.com/okian/mlerank/internal/domain/aggregate"
	"github.com/okian/mlerank/internal/domain/estimator"
	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/internal/domain/scoring"
)

// ErrBadRequest marks a malformed query.
var ErrBadRequest = errors.New("bad request")

// classify maps an upstream error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidSelection):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, aggregate.ErrUnknownCompetitor),
		errors.Is(err, aggregate.ErrInvalidOutcome),
		errors.Is(err, scoring.ErrDegenerateScore),
		errors.Is(err, scoring.ErrNegativeScore):
		return http.StatusUnprocessableEntity, "invalid_games"
	case errors.Is(err, estimator.ErrConvergence):
		return http.StatusInternalServerError, "not_converged"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, provider.ErrFetch), errors.Is(err, provider.ErrDecode):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
