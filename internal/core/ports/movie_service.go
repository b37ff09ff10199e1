package ports

import (
	"context"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// MovieService defines use-case operations on a user's movie list. Every
// single-movie operation is scoped to ownerID.
type MovieService interface {
	Create(ctx context.Context, fields domain.MovieFields, ownerID string) (*domain.Movie, error)
	List(ctx context.Context, ownerID string, filter domain.MovieFilter) ([]domain.Movie, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Movie, error)
	Update(ctx context.Context, id string, patch domain.MoviePatch, ownerID string) (*domain.Movie, error)
	Delete(ctx context.Context, id, ownerID string) error
}
