package api

import (
	"net/http"

	"github.com/okian/mlerank/internal/domain/types"
)

// RankingsHandler serves full rankings.
type RankingsHandler struct {
	deps        Dependencies
	defaultKind string
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps Dependencies, defaultKind string) *RankingsHandler {
	return &RankingsHandler{deps: deps, defaultKind: defaultKind}
}

// HandleGetRankings handles GET /rankings?season=&weeks=&kind= requests.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r, h.defaultKind)
	if err != nil {
		writeFailure(w, err)
		return
	}
	ranking, err := h.deps.Ranking(r.Context(), sel)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// HandleGetProgression handles GET /rankings/progression?season=&weeks=&kind=
// requests with one cumulative ranking per week.
func (h *RankingsHandler) HandleGetProgression(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r, h.defaultKind)
	if err != nil {
		writeFailure(w, err)
		return
	}
	rankings, err := h.deps.Progression(r.Context(), sel)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if rankings == nil {
		rankings = []types.Ranking{}
	}
	writeJSON(w, http.StatusOK, rankings)
}
