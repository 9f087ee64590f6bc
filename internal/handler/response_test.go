package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorDataCarriesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorData(rec, http.StatusBadRequest, "Please enter a discount code", map[string]string{"field": "code"})

	var body struct {
		Status  string            `json:"status"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
		Error   apiError          `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusBadRequest || body.Status != "error" || body.Data["field"] != "code" {
		t.Fatalf("unexpected response %d %+v", rec.Code, body)
	}
	if body.Error.Code != http.StatusBadRequest || body.Error.Status != "Bad Request" {
		t.Fatalf("error = %+v", body.Error)
	}

	rec = httptest.NewRecorder()
	writeErrorData(rec, http.StatusOK, "not an error status", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("success status must be promoted, got %d", rec.Code)
	}
}

func TestWriteJSONOmitsErrorOnSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]bool{"ok": true})

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "ok" {
		t.Fatalf("status = %v", body["status"])
	}
	if _, ok := body["error"]; ok {
		t.Fatal("success envelope must not carry an error")
	}
}

func TestWriteFileHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	writeFile(rec, "application/pdf", "inline", "invoice-T1.pdf", []byte("%PDF"))

	if got := rec.Header().Get("Content-Disposition"); got != `inline; filename="invoice-T1.pdf"` {
		t.Fatalf("disposition = %q", got)
	}
	if rec.Header().Get("Content-Length") != "4" || rec.Body.String() != "%PDF" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
