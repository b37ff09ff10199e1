package ports

import (
	"context"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
