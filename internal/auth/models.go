package auth

import (
	"time"
)

// TokenRequest represents an API key exchange request
type TokenRequest struct {
	APIKey   string `json:"api_key" validate:"required"`
	ClientID string `json:"client_id" validate:"required,min=3,max=64"`
}

// TokenResponse represents a token response
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ClientID  string    `json:"client_id"`
	Role      string    `json:"role"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
