package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/bulkscroll/internal/audit"
	"github.com/rezkam/bulkscroll/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{
				{Field: field, Issue: issue},
			},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Unauthorized sends a 401 Unauthorized error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// InternalError sends a 500 Internal Server Error. Logs the actual error
// server-side but returns a generic message to the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "internal server error", "error", err)
	}
	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain/audit sentinel errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		details := make([]ErrorField, 0, len(valErr.Violations))
		for _, v := range valErr.Violations {
			details = append(details, ErrorField{Field: "request", Issue: v.Error()})
		}
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: ErrorDetail{Code: "VALIDATION_ERROR", Message: "validation failed", Details: details},
		})

	case errors.Is(err, domain.ErrNegativeRetries),
		errors.Is(err, domain.ErrInvalidSize),
		errors.Is(err, domain.ErrInvalidConflictBehavior),
		errors.Is(err, domain.ErrInvalidAPIKeyFormat),
		errors.Is(err, domain.ErrDurationEmpty),
		errors.Is(err, domain.ErrInvalidDurationFormat):
		BadRequest(w, err.Error())

	case errors.Is(err, domain.ErrClusterTooOld):
		Error(w, "CLUSTER_TOO_OLD", err.Error(), http.StatusPreconditionFailed)

	case errors.Is(err, domain.ErrRunNotFound), errors.Is(err, audit.ErrRecordNotFound):
		NotFound(w, "run")

	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "invalid or missing API key")

	default:
		InternalError(w, r, err)
	}
}
