package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/movielist-api/internal/core/domain"
	"github.com/99minutos/movielist-api/internal/core/ports"
)

type MovieService struct {
	repo   ports.MovieRepository
	guard  *OwnershipGuard
	logger zerolog.Logger
}

func NewMovieService(repo ports.MovieRepository, logger zerolog.Logger) *MovieService {
	return &MovieService{repo: repo, guard: NewOwnershipGuard(repo, logger), logger: logger}
}

// Create stores a new movie for ownerID. The owner always comes from the
// authenticated caller, never from the payload.
func (s *MovieService) Create(ctx context.Context, fields domain.MovieFields, ownerID string) (*domain.Movie, error) {
	fields.Normalize()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	movie, err := s.repo.Create(ctx, fields, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID).Msg("failed to create movie")
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.logger.Info().Str("movie_id", movie.ID).Str("user_id", ownerID).Msg("movie created")
	return movie, nil
}

// List needs no guard: the query is scoped to ownerID at the store.
func (s *MovieService) List(ctx context.Context, ownerID string, filter domain.MovieFilter) ([]domain.Movie, error) {
	movies, err := s.repo.FindMany(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

func (s *MovieService) Get(ctx context.Context, id, ownerID string) (*domain.Movie, error) {
	return s.guard.Authorize(ctx, id, ownerID)
}

// Update applies a partial update. Immutable fields cannot be expressed by
// domain.MoviePatch, so they never reach the store.
func (s *MovieService) Update(ctx context.Context, id string, patch domain.MoviePatch, ownerID string) (*domain.Movie, error) {
	patch.Normalize()
	if patch.IsEmpty() {
		return nil, domain.NewValidationError("body", "no fields provided for update")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.guard.Authorize(ctx, id, ownerID); err != nil {
		return nil, err
	}

	movie, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update movie %s: %w", id, err)
	}

	s.logger.Info().Str("movie_id", id).Str("user_id", ownerID).Msg("movie updated")
	return movie, nil
}

// Delete removes the movie. Zero affected rows after a passed guard means a
// concurrent delete won the race, which is reported as an internal error.
func (s *MovieService) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.guard.Authorize(ctx, id, ownerID); err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete movie %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete movie %s: %w", id, domain.ErrMovieVanished)
	}

	s.logger.Info().Str("movie_id", id).Str("user_id", ownerID).Msg("movie deleted")
	return nil
}
