package testutil

import (
	"context"
	"net/http"

	"crmcore/internal/platform/middleware"
)

// WithUserID adds a user ID to the request context, simulating what the auth
// middleware does for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)
	return req.WithContext(ctx)
}

// WithRole adds a role to the request context alongside the user ID.
func WithRole(req *http.Request, role string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRole, role)
	return req.WithContext(ctx)
}
