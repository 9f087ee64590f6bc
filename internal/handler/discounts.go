package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/discount"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/ports"
	"uleaf-admin/internal/server/authctx"
)

// DiscountBackend is the part of the backend client the discount screens use.
type DiscountBackend interface {
	ports.DiscountAPI
	ListDiscounts(ctx context.Context, opts backend.DiscountListOptions) (*backend.DiscountList, error)
	ValidateDiscountCode(ctx context.Context, code string, cart []domain.CartItem, buyerID string) (*domain.ValidationResult, error)
}

type DiscountHandler struct {
	API      DiscountBackend
	Deleter  *discount.Deleter
	Activity ports.ActivityRecorder
	Logger   *slog.Logger
}

func (h DiscountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/discounts", h.list)
	r.Post("/admin/discounts", h.create)
	r.Post("/admin/discounts/validate", h.validateCode)
	r.Get("/admin/discounts/form", h.newForm)
	r.Post("/admin/discounts/form", h.submitForm)
	r.Get("/admin/discounts/{id}", h.get)
	r.Put("/admin/discounts/{id}", h.update)
	r.Delete("/admin/discounts/{id}", h.delete)
	r.Get("/admin/discounts/{id}/form", h.editForm)
}

func (h DiscountHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := backend.DiscountListOptions{Status: q.Get("status")}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		opts.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		opts.Offset = v
	}
	res, err := h.API.ListDiscounts(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	discounts := res.Discounts
	if discounts == nil {
		discounts = []domain.Discount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"discounts":  discounts,
		"pagination": res.Pagination,
	})
}

func (h DiscountHandler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.API.GetDiscount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h DiscountHandler) create(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}
	form.Mode = discount.ModeCreate
	form.ID = ""
	h.submit(w, r, form)
}

func (h DiscountHandler) update(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}
	form.Mode = discount.ModeEdit
	form.ID = chi.URLParam(r, "id")
	h.submit(w, r, form)
}

// submitForm takes the mode from the body; an id alone implies edit.
func (h DiscountHandler) submitForm(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}
	if form.Mode == "" {
		form.Mode = discount.ModeCreate
		if form.ID != "" {
			form.Mode = discount.ModeEdit
		}
	}
	h.submit(w, r, form)
}

func (h DiscountHandler) submit(w http.ResponseWriter, r *http.Request, form *discount.Form) {
	out, err := form.Submit(r.Context(), h.API)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	verb, status := "updated", http.StatusOK
	if out.Created {
		verb, status = "created", http.StatusCreated
	}
	code := form.Code
	if out.Discount != nil && out.Discount.Code != "" {
		code = out.Discount.Code
	}
	h.record(r.Context(), "Discount "+verb, fmt.Sprintf("Discount %s was %s", code, verb), domain.LogInfo)
	writeJSON(w, status, out)
}

func (h DiscountHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := h.Deleter.Confirm(r.Context(), id, confirmed); err != nil {
		writeServiceError(w, err)
		return
	}
	h.record(r.Context(), "Discount deleted", fmt.Sprintf("Discount %s was deleted", id), domain.LogWarning)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "refresh": true})
}

func (h DiscountHandler) validateCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code      string            `json:"code"`
		CartItems []domain.CartItem `json:"cartItems"`
		BuyerID   string            `json:"buyerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	res, err := h.API.ValidateDiscountCode(r.Context(), req.Code, req.CartItems, req.BuyerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h DiscountHandler) newForm(w http.ResponseWriter, r *http.Request) {
	form, err := discount.NewCreateForm(domain.DiscountType(r.URL.Query().Get("type")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h DiscountHandler) editForm(w http.ResponseWriter, r *http.Request) {
	form, err := discount.LoadForEdit(r.Context(), h.API, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h DiscountHandler) record(ctx context.Context, title, message string, typ domain.ActivityLogType) {
	recordActivity(ctx, h.Activity, h.Logger, title, message, typ)
}

func decodeForm(w http.ResponseWriter, r *http.Request) (*discount.Form, bool) {
	var form discount.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return nil, false
	}
	return &form, true
}

// recordActivity writes an audit entry. Failures are logged and never fail
// the request that triggered them.
func recordActivity(ctx context.Context, rec ports.ActivityRecorder, logger *slog.Logger, title, message string, typ domain.ActivityLogType) {
	if rec == nil {
		return
	}
	err := rec.Record(ctx, domain.ActivityLog{
		Title:    title,
		Message:  message,
		Actor:    authctx.Actor(ctx),
		Type:     typ,
		LoggedAt: time.Now().UTC(),
	})
	if err != nil && logger != nil {
		logger.Warn("activity log write failed", "title", title, "err", err)
	}
}
