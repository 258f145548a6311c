// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stillwater/lodge/internal/apperr"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "internal server error")
}

// FromError translates a classified error into a response. Internal and
// configuration failures are logged and answered with a generic body.
func FromError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = &apperr.Error{Kind: apperr.KindInternal, Err: err}
	}

	switch e.Kind {
	case apperr.KindValidation:
		JSON(w, http.StatusBadRequest, ErrorBody{Error: e.Message, Field: e.Field})
	case apperr.KindAuth:
		Unauthorized(w, e.Message)
	default:
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("kind", e.Kind.String()),
			slog.String("error", err.Error()),
		)
		InternalError(w)
	}
}
