package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/movielist-api/internal/core/domain"
	"github.com/99minutos/movielist-api/internal/core/ports"
)

// OwnershipGuard loads a movie and confirms it belongs to the requester.
type OwnershipGuard struct {
	repo ports.MovieRepository
	log  zerolog.Logger
}

func NewOwnershipGuard(repo ports.MovieRepository, log zerolog.Logger) *OwnershipGuard {
	return &OwnershipGuard{repo: repo, log: log}
}

// Authorize checks, in order, the id format, existence, and ownership, and
// stops at the first failure. A movie owned by someone else yields
// domain.ErrForbidden rather than domain.ErrMovieNotFound.
func (g *OwnershipGuard) Authorize(ctx context.Context, movieID, requesterID string) (*domain.Movie, error) {
	if !g.repo.ValidID(movieID) {
		return nil, domain.ErrMalformedID
	}

	movie, err := g.repo.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if movie.OwnerID != requesterID {
		g.log.Warn().
			Str("movie_id", movieID).
			Str("user_id", requesterID).
			Msg("ownership check failed")
		return nil, domain.ErrForbidden
	}
	return movie, nil
}
