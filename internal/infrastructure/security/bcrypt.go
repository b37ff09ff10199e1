package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// BcryptHasher implements ports.PasswordHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher refuses costs below 10.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < 10 || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d out of range", domain.ErrServerMisconfigured, cost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Compare returns domain.ErrInvalidCredentials on any mismatch, including a
// malformed hash.
func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}
