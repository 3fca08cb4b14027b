package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AuthHandlers handles authentication HTTP endpoints
type AuthHandlers struct {
	jwtService    *JWTService
	apiKeyService *APIKeyService
	validator     *validator.Validate
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(jwtService *JWTService, apiKeyService *APIKeyService) *AuthHandlers {
	return &AuthHandlers{
		jwtService:    jwtService,
		apiKeyService: apiKeyService,
		validator:     validator.New(),
	}
}

// Token exchanges a valid API key for a JWT
// POST /api/auth/token
func (h *AuthHandlers) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	// Validate input
	if err := h.validator.Struct(req); err != nil {
		h.sendValidationError(w, err)
		return
	}

	// Verify the API key
	if err := h.apiKeyService.VerifyKey(req.APIKey); err != nil {
		h.sendError(w, http.StatusUnauthorized, "InvalidCredentials", "Invalid API key")
		return
	}

	role := "client"
	token, err := h.jwtService.GenerateToken(req.ClientID, role)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		h.sendError(w, http.StatusInternalServerError, "InternalError", "Failed to generate token")
		return
	}

	expiresAt, err := h.jwtService.GetTokenExpiration(token)
	if err != nil {
		log.Printf("Error reading token expiration: %v", err)
		expiresAt = time.Now().Add(h.jwtService.expiry)
	}

	h.sendTokenResponse(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		ClientID:  req.ClientID,
		Role:      role,
	})
}

// Helper methods

func (h *AuthHandlers) sendTokenResponse(w http.ResponseWriter, status int, response TokenResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func (h *AuthHandlers) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   code,
		Message: message,
		Code:    code,
	})
}

func (h *AuthHandlers) sendValidationError(w http.ResponseWriter, err error) {
	var validationErrors []string
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			validationErrors = append(validationErrors, fmt.Sprintf("%s: %s", fe.Field(), getValidationMessage(fe)))
		}
	}

	h.sendError(w, http.StatusBadRequest, "ValidationError", strings.Join(validationErrors, "; "))
}

func getValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alphanum":
		return "must contain only alphanumeric characters"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
