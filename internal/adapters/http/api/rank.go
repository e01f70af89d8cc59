package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RankHandler serves a single competitor's entry.
type RankHandler struct {
	deps        Dependencies
	defaultKind string
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies, defaultKind string) *RankHandler {
	return &RankHandler{deps: deps, defaultKind: defaultKind}
}

// HandleGetRank handles GET /rank/{competitor}?season=&weeks=&kind= requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	competitor := strings.TrimSpace(chi.URLParam(r, "competitor"))
	if competitor == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	sel, err := parseSelection(r, h.defaultKind)
	if err != nil {
		writeFailure(w, err)
		return
	}
	entry, err := h.deps.Rank(r.Context(), sel, competitor)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
