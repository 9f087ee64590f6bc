package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/directory"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/server/authctx"
)

type DirectoryHandler struct {
	Directory *directory.Directory
	Searches  *directory.SearchSessions
}

func (h DirectoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/gardens", h.gardens)
	r.Get("/admin/buyers", h.buyers)
	r.Get("/admin/buyers/search", h.search)
}

func (h DirectoryHandler) gardens(w http.ResponseWriter, r *http.Request) {
	h.maybeReset(r)
	gardens, err := h.Directory.Gardens(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if gardens == nil {
		gardens = []domain.Garden{}
	}
	writeJSON(w, http.StatusOK, gardens)
}

func (h DirectoryHandler) buyers(w http.ResponseWriter, r *http.Request) {
	h.maybeReset(r)
	buyers, err := h.Directory.Buyers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if buyers == nil {
		buyers = []domain.Buyer{}
	}
	writeJSON(w, http.StatusOK, buyers)
}

// search runs through the caller's debounced session, so a newer query
// from the same admin answers an older one with 409.
func (h DirectoryHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	key := "anonymous"
	if u := authctx.FromContext(r.Context()); u != nil {
		key = u.UID
	}
	res, err := directory.Await(r.Context(), h.Searches.For(key).Input(r.Context(), q))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	buyers := res.Buyers
	if buyers == nil {
		buyers = []domain.Buyer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":      strings.TrimSpace(res.Query),
		"generation": res.Generation,
		"buyers":     buyers,
	})
}

func (h DirectoryHandler) maybeReset(r *http.Request) {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		h.Directory.Reset()
	}
}
