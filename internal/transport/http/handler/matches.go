package handler

import (
	"net/http"

	"github.com/pizoo/pizoo-api/internal/application/match"
	"github.com/pizoo/pizoo-api/internal/transport/http/middleware"
)

// MatchHandler handles match-list endpoints.
type MatchHandler struct {
	svc match.Service
}

func NewMatchHandler(svc match.Service) *MatchHandler { return &MatchHandler{svc: svc} }

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	matches, err := h.svc.ListFor(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
