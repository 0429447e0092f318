package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// OKResponse writes data as a JSON body with status 200.
func OKResponse(w http.ResponseWriter, data any) {
	JSONResponse(w, http.StatusOK, data)
}

// JSONResponse writes data as a JSON body with the given status.
func JSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{"error": message})
}

// ValidationResponse is the body of a 400 caused by invalid input.
type ValidationResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

// ValidationErrorResponse writes field-level messages with status 400.
func ValidationErrorResponse(w http.ResponseWriter, fields map[string][]string) {
	JSONResponse(w, http.StatusBadRequest, ValidationResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}
