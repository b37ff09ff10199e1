package ports

import (
	"context"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// UserRepository defines the credential store.
//
// Emails are expected in their normalized (lower-cased, trimmed) form. Create
// must enforce email uniqueness itself and return domain.ErrUserExists on
// conflict.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no user matches.
	// PasswordHash is only populated when withPassword is true.
	FindByEmail(ctx context.Context, email string, withPassword bool) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
