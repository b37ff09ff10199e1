package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/movielist-api/internal/core/domain"
	"github.com/99minutos/movielist-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenIssuer
	limiter ports.LoginLimiter
	log     zerolog.Logger
}

// NewAuthService wires the credential store and security capabilities. A nil
// limiter disables login throttling.
func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	limiter ports.LoginLimiter,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, limiter: limiter, log: log}
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	switch {
	case name == "":
		return nil, domain.NewValidationError("name", "name is required")
	case email == "":
		return nil, domain.NewValidationError("email", "email is required")
	case password == "":
		return nil, domain.NewValidationError("password", "password is required")
	case len(password) < domain.MinPasswordLength:
		return nil, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLength))
	}

	// Fast path only; the store's unique index is what actually guarantees uniqueness.
	if _, err := s.repo.FindByEmail(ctx, email, false); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	created.PasswordHash = ""
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}

	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, proceeding")
		} else if blocked {
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.hasher.Compare(user.PasswordHash, password) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	user.PasswordHash = ""
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	s.log.Warn().Msg("login rejected: invalid credentials")
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
