package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/orders"
	"uleaf-admin/internal/server/authctx"
)

type OrderHandler struct {
	Lister orders.Lister
}

func (h OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/export", h.export)
}

func (h OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	q, ok := orderQuery(w, r)
	if !ok {
		return
	}
	page, err := h.Lister.Page(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if page.Rows == nil {
		page.Rows = []orders.Row{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (h OrderHandler) export(w http.ResponseWriter, r *http.Request) {
	q, ok := orderQuery(w, r)
	if !ok {
		return
	}
	rows, err := h.Lister.All(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	body, contentType, ext, err := orders.Export(rows, r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := q.Status
	if status == "" {
		status = "all"
	}
	filename := fmt.Sprintf("orders-%s-%s.%s", status, time.Now().Format("20060102"), ext)
	writeFile(w, contentType, "attachment", filename, body)
}

// orderQuery reads the tab filters. Admins may filter by buyer; everyone
// else only ever sees their own orders.
func orderQuery(w http.ResponseWriter, r *http.Request) (orders.Query, bool) {
	v := r.URL.Query()
	q := orders.Query{Status: v.Get("status")}
	user := authctx.FromContext(r.Context())
	switch {
	case user != nil && user.Role == domain.RoleAdmin:
		q.BuyerID = v.Get("buyerId")
	case user != nil && user.UID != "":
		q.SellerID = user.UID
	default:
		writeError(w, http.StatusForbidden, "forbidden")
		return q, false
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n > 0 {
		q.Limit = n
	}
	return q, true
}
