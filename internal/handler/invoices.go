package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"uleaf-admin/internal/domain"
	"uleaf-admin/internal/invoice"
	"uleaf-admin/internal/ports"
)

type InvoiceHandler struct {
	Service  *invoice.Service
	Activity ports.ActivityRecorder
	Logger   *slog.Logger
}

func (h InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/invoices/{buyerId}/transactions", h.transactions)
	r.Post("/admin/invoices/{txn}/view", h.view)
	r.Get("/admin/invoices/{txn}/pdf", h.pdf)
	r.Post("/admin/invoices/{txn}/send", h.send)
}

func (h InvoiceHandler) transactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Service.Transactions(r.Context(), chi.URLParam(r, "buyerId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h InvoiceHandler) view(w http.ResponseWriter, r *http.Request) {
	txn := chi.URLParam(r, "txn")
	doc, err := h.Service.View(r.Context(), txn)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	recordActivity(r.Context(), h.Activity, h.Logger, "Invoice viewed",
		fmt.Sprintf("Invoice for transaction %s was generated", txn), domain.LogInfo)
	writeJSON(w, http.StatusOK, doc)
}

func (h InvoiceHandler) pdf(w http.ResponseWriter, r *http.Request) {
	txn := chi.URLParam(r, "txn")
	data, err := h.Service.PDF(r.Context(), txn)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeFile(w, "application/pdf", "inline", "invoice-"+txn+".pdf", data)
}

func (h InvoiceHandler) send(w http.ResponseWriter, r *http.Request) {
	txn := chi.URLParam(r, "txn")
	if err := h.Service.Send(r.Context(), txn); err != nil {
		writeServiceError(w, err)
		return
	}
	recordActivity(r.Context(), h.Activity, h.Logger, "Invoice sent",
		fmt.Sprintf("Invoice for transaction %s was emailed", txn), domain.LogInfo)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Invoice sent successfully",
	})
}
