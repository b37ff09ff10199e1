package ports

import (
	"context"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// MovieRepository defines persistence operations for movies. Implementations
// validate fields themselves and return domain.ErrValidation on bad input.
type MovieRepository interface {
	// ValidID reports whether id is structurally valid for this store.
	ValidID(id string) bool
	Create(ctx context.Context, fields domain.MovieFields, ownerID string) (*domain.Movie, error)
	// FindByID returns domain.ErrMovieNotFound when the movie does not exist.
	FindByID(ctx context.Context, id string) (*domain.Movie, error)
	// FindMany lists the movies owned by ownerID that match filter.
	FindMany(ctx context.Context, ownerID string, filter domain.MovieFilter) ([]domain.Movie, error)
	// Update applies patch and returns the stored result, or
	// domain.ErrMovieNotFound if the row is gone.
	Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error)
	// Delete returns the number of removed records.
	Delete(ctx context.Context, id string) (int64, error)
}
