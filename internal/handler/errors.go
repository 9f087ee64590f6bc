package handler

import (
	"context"
	"errors"
	"net/http"

	"uleaf-admin/internal/backend"
	"uleaf-admin/internal/directory"
	"uleaf-admin/internal/discount"
	"uleaf-admin/internal/invoice"
	"uleaf-admin/internal/orders"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		vErr   *discount.ValidationError
		apiErr *backend.APIError
		cfgErr *backend.ConfigurationError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.Is(err, backend.ErrNoConnection), errors.Is(err, directory.ErrSearchClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, backend.ErrNoToken):
		return http.StatusUnauthorized
	case errors.Is(err, invoice.ErrBusy),
		errors.Is(err, discount.ErrDeleteInProgress),
		errors.Is(err, directory.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, backend.ErrEmptyCode),
		errors.Is(err, backend.ErrEmptyCart),
		errors.Is(err, backend.ErrMissingID),
		errors.Is(err, backend.ErrMissingBuyer),
		errors.Is(err, backend.ErrMissingTransaction),
		errors.Is(err, discount.ErrNotConfirmed),
		errors.Is(err, directory.ErrQueryTooShort),
		errors.Is(err, orders.ErrUnknownStatus),
		errors.Is(err, orders.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with the backend message kept verbatim.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	var vErr *discount.ValidationError
	if errors.As(err, &vErr) {
		writeErrorData(w, status, vErr.Message, map[string]string{"field": vErr.Field})
		return
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		writeError(w, status, apiErr.Message)
		return
	}
	writeError(w, status, err.Error())
}
