package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	adminIDKey contextKey = "adminID"
)

// WithAdminID adds the authenticated admin's ID to the request context
func WithAdminID(r *http.Request, adminID string) *http.Request {
	ctx := context.WithValue(r.Context(), adminIDKey, adminID)
	return r.WithContext(ctx)
}

// GetAdminID retrieves the admin ID from context, returns empty string if not found
func GetAdminID(r *http.Request) string {
	adminID, _ := r.Context().Value(adminIDKey).(string)
	return adminID
}
