package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/domain"
)

type ReferenceSource interface {
	Reference(ctx context.Context, kind, filter string) ([]domain.ReferenceItem, error)
}

// ReferenceHandler serves the dropdown lists behind the selector sheets.
type ReferenceHandler struct {
	Source ReferenceSource
}

func (h ReferenceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reference/{kind}", h.get)
}

func (h ReferenceHandler) get(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !backend.IsReferenceKind(kind) {
		writeError(w, http.StatusNotFound, "unknown reference list: "+kind)
		return
	}
	items, err := h.Source.Reference(r.Context(), kind, r.URL.Query().Get("genus"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []domain.ReferenceItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
