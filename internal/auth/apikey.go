package auth

import (
	"errors"

	"github.com/levelforge/server/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidAPIKey is returned when a presented API key does not match.
var ErrInvalidAPIKey = errors.New("invalid API key")

// APIKeyService verifies presented API keys against the configured hash.
type APIKeyService struct {
	keyHash []byte
}

// NewAPIKeyService creates an API key service from configuration
func NewAPIKeyService(cfg *config.Config) *APIKeyService {
	return &APIKeyService{
		keyHash: []byte(cfg.Auth.APIKeyHash),
	}
}

// VerifyKey checks a plaintext API key against the configured bcrypt hash
func (s *APIKeyService) VerifyKey(key string) error {
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}

// HashKey generates a bcrypt hash for an API key. Used by provisioning
// tooling to produce the API_KEY_HASH value.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
