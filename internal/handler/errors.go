package handler

import (
	"errors"
	"net/http"

	"chatrelay/internal/domain"
	"chatrelay/internal/httputil"
)

// statusFor maps an error to its HTTP status.
// Typed turn errors carry their own status; sentinels are matched with errors.Is.
func statusFor(err error) int {
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// handleError converts domain errors to RFC 7807 responses (admin routes)
func handleError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		httputil.RespondError(w, status, "internal server error")
		return
	}
	httputil.RespondError(w, status, err.Error())
}

// handleChatError renders a failed turn as {"error": ...}
func handleChatError(w http.ResponseWriter, err error) {
	httputil.RespondJSON(w, statusFor(err), httputil.ErrorBody{Error: err.Error()})
}
