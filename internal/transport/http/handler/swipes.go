package handler

import (
	"encoding/json"
	"net/http"

	"github.com/pizoo/pizoo-api/internal/application/swipe"
	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/pizoo/pizoo-api/internal/pkg/validate"
	"github.com/pizoo/pizoo-api/internal/transport/http/middleware"
)

// SwipeHandler handles swipe and likes-me endpoints.
type SwipeHandler struct {
	svc swipe.Service
}

func NewSwipeHandler(svc swipe.Service) *SwipeHandler { return &SwipeHandler{svc: svc} }

func (h *SwipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.Record(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *SwipeHandler) LikesMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	likers, err := h.svc.LikesMe(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likers)
}
