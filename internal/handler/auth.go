package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/server/authctx"
	"uleaf-admin/internal/service"
)

type AuthHandler struct {
	Service *service.AuthService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/exchange", h.exchange)
}

func (h AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

func (h AuthHandler) exchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		writeError(w, http.StatusBadRequest, "idToken is required")
		return
	}
	res, err := h.Service.Exchange(r.Context(), req.IDToken)
	switch {
	case errors.Is(err, service.ErrNoJWTSecret):
		writeError(w, http.StatusNotImplemented, err.Error())
		return
	case errors.Is(err, service.ErrNotStaff):
		writeError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
