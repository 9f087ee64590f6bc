package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/domain"
)

type ActivityLister interface {
	List(ctx context.Context, actor string, limit int) ([]domain.ActivityLog, error)
}

type ActivityLogHandler struct {
	Repo ActivityLister
}

func (h ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/activity", h.list)
}

func (h ActivityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.Repo.List(r.Context(), r.URL.Query().Get("actor"), limit)
	if err != nil {
		writeErrorWithErr(w, http.StatusInternalServerError, "failed to load activity", err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		resp = append(resp, map[string]any{
			"id":        l.ID,
			"title":     l.Title,
			"message":   l.Message,
			"actor":     l.Actor,
			"type":      string(l.Type),
			"timestamp": l.LoggedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
