package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// apiResponse is the envelope every JSON answer of the gateway uses.
type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func envelope(status int, message string, data any) apiResponse {
	if status < 400 {
		return apiResponse{Status: "ok", Message: message, Data: data}
	}
	return apiResponse{
		Status:  "error",
		Message: message,
		Data:    data,
		Error:   &apiError{Code: status, Status: http.StatusText(status)},
	}
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeRawJSON(w, status, envelope(status, "", payload))
}

// writeErrorData writes an error envelope whose data carries details such
// as the form field that failed.
func writeErrorData(w http.ResponseWriter, status int, message string, data any) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, envelope(status, message, data))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeErrorData(w, status, message, nil)
}

func writeErrorWithErr(w http.ResponseWriter, status int, message string, err error) {
	switch {
	case err == nil:
		writeError(w, status, message)
	case message == "":
		writeError(w, status, err.Error())
	default:
		writeError(w, status, message+": "+err.Error())
	}
}

// writeFile sends body as a file. disposition is "attachment" or "inline".
func writeFile(w http.ResponseWriter, contentType, disposition, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
