// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes value with the given status.
func JSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// Decode reads a JSON body into value. Unknown fields are ignored.
func Decode(r *http.Request, value any) error {
	if r.Body == nil {
		return domain.ErrInvalidPayload
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(value); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return nil
}

// Error writes the error body for err.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Classify(err)

	msg := err.Error()
	if status == http.StatusInternalServerError && !domain.IsStorageError(err) {
		msg = "internal error"
	}

	Status(w, r, status, code, msg)
}

// Status writes an error body with an explicit status and code.
func Status(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	JSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   msg,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrInvalidPayload), errors.Is(err, domain.ErrInvalidLink):
		return http.StatusBadRequest, "invalid_payload"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case domain.IsStorageError(err):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
