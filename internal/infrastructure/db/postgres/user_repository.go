package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO users (name, email, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).Scan(&id)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &domain.User{
		ID:        strconv.FormatInt(id, 10),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

// FindByEmail matches case-insensitively, backed by the lower(email) index.
func (r *UserRepository) FindByEmail(ctx context.Context, email string, withPassword bool) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT id, name, email, password, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)`

	var (
		id   int64
		user domain.User
	)
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.ID = strconv.FormatInt(id, 10)
	if !withPassword {
		user.PasswordHash = ""
	}
	return &user, nil
}
