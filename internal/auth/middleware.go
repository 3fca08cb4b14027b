package auth

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// ClientIDKey is the context key for the authenticated client ID
	ClientIDKey ContextKey = "client_id"
	// RoleKey is the context key for the client role
	RoleKey ContextKey = "role"
	// ClaimsKey is the context key for JWT claims
	ClaimsKey ContextKey = "claims"
)

// AuthMiddleware validates JWT tokens and adds client info to request context
func (h *AuthHandlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			h.sendError(w, http.StatusUnauthorized, "MissingToken", "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			h.sendError(w, http.StatusUnauthorized, "InvalidToken", "Invalid authorization header format")
			return
		}

		claims, err := h.jwtService.ValidateToken(parts[1])
		if err != nil {
			h.sendError(w, http.StatusUnauthorized, "InvalidToken", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ClientIDKey, claims.ClientID)
		ctx = context.WithValue(ctx, RoleKey, claims.Role)
		ctx = context.WithValue(ctx, ClaimsKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole middleware ensures the client has the required role
func (h *AuthHandlers) RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(RoleKey).(string)
			if !ok || role != requiredRole {
				h.sendError(w, http.StatusForbidden, "InsufficientPermissions", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClientID extracts the client ID from request context
func GetClientID(r *http.Request) (string, bool) {
	clientID, ok := r.Context().Value(ClientIDKey).(string)
	return clientID, ok
}

// GetRole extracts the role from request context
func GetRole(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(RoleKey).(string)
	return role, ok
}

// GetClaims extracts JWT claims from request context
func GetClaims(r *http.Request) (*Claims, bool) {
	claims, ok := r.Context().Value(ClaimsKey).(*Claims)
	return claims, ok
}
