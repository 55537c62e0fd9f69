package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"billmate/internal/auth"
	"billmate/internal/service"
	"billmate/internal/storage"
)

// Error codes returned in response bodies. Clients branch on these, not on
// the human-readable message.
const (
	errCodeInvalidInput  = "INVALID_INPUT"
	errCodeNotFound      = "NOT_FOUND"
	errCodeUnauthorized  = "UNAUTHORIZED"
	errCodeForbidden     = "FORBIDDEN"
	errCodeConflict      = "CONFLICT"
	errCodeInvalidCode   = "INVALID_CODE"
	errCodeCodeExpired   = "CODE_EXPIRED"
	errCodeCodeUsed      = "CODE_USED"
	errCodeAlreadyPaired = "ALREADY_PAIRED"
	errCodeNotPaired     = "NOT_PAIRED"
	errCodeInternal      = "INTERNAL_ERROR"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for all error responses.
type ErrorResponse struct {
	Error apiError `json:"error"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: apiError{Code: code, Message: message}})
}

// respondServiceError maps a service-layer error onto an HTTP response.
func respondServiceError(w http.ResponseWriter, err error) {
	status, code := mapServiceError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "an internal error occurred"
	}
	respondError(w, status, code, message)
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, errCodeInvalidInput
	case errors.Is(err, service.ErrCodeNotFound):
		return http.StatusNotFound, errCodeInvalidCode
	case errors.Is(err, service.ErrCodeExpired):
		return http.StatusGone, errCodeCodeExpired
	case errors.Is(err, service.ErrCodeUsed):
		return http.StatusConflict, errCodeCodeUsed
	case errors.Is(err, service.ErrAlreadyPaired):
		return http.StatusConflict, errCodeAlreadyPaired
	case errors.Is(err, service.ErrSelfPairing):
		return http.StatusBadRequest, errCodeInvalidInput
	case errors.Is(err, service.ErrNotPaired):
		return http.StatusNotFound, errCodeNotPaired
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, errCodeForbidden
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, errCodeUnauthorized
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, errCodeInvalidInput
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict, errCodeConflict
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, errCodeUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, errCodeNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict, errCodeConflict
	default:
		return http.StatusInternalServerError, errCodeInternal
	}
}

// parseJSONBody parses a JSON request body, rejecting unknown fields.
func parseJSONBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
