package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

const movieColumns = `id, title, director, year, genre, rating, user_id, created_at, updated_at`

type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ValidID accepts positive decimal integers, the only ids BIGSERIAL produces.
func (r *MovieRepository) ValidID(id string) bool {
	_, ok := parseID(id)
	return ok
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*domain.Movie, error) {
	var (
		id, owner    int64
		year, rating sql.NullInt64
		m            domain.Movie
	)
	if err := row.Scan(&id, &m.Title, &m.Director, &year, &m.Genre, &rating, &owner, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.ID = strconv.FormatInt(id, 10)
	m.OwnerID = strconv.FormatInt(owner, 10)
	m.Year = nullIntPtr(year)
	m.Rating = nullIntPtr(rating)
	return &m, nil
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func mapWriteErr(op string, err error) error {
	switch pgCode(err) {
	case codeCheckViolation, codeOutOfRange:
		return fmt.Errorf("%s: %w", op, domain.ErrValidation)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *MovieRepository) Create(ctx context.Context, fields domain.MovieFields, ownerID string) (*domain.Movie, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return nil, fmt.Errorf("owner id %q is not numeric", ownerID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO movies (title, director, year, genre, rating, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + movieColumns

	m, err := scanMovie(r.db.QueryRowContext(ctx, query,
		fields.Title, fields.Director, fields.Year, fields.Genre, fields.Rating, owner))
	if err != nil {
		return nil, mapWriteErr("insert movie", err)
	}
	return m, nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, domain.ErrMalformedID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, n))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	return m, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user text into a literal ILIKE substring pattern.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// buildListQuery always scopes by owner. Placeholders are numbered in the
// order the filters are appended.
func buildListQuery(owner int64, f domain.MovieFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{owner}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Title != "" {
		add(`title ILIKE $%d ESCAPE '\'`, containsPattern(f.Title))
	}
	if f.Director != "" {
		add(`director ILIKE $%d ESCAPE '\'`, containsPattern(f.Director))
	}
	if f.Genre != "" {
		add(`genre ILIKE $%d ESCAPE '\'`, containsPattern(f.Genre))
	}
	if f.Year != nil {
		add(`year = $%d`, *f.Year)
	}
	if f.MinRating != nil {
		add(`rating >= $%d`, *f.MinRating)
	}

	query := `SELECT ` + movieColumns + ` FROM movies WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id DESC`
	return query, args
}

func (r *MovieRepository) FindMany(ctx context.Context, ownerID string, filter domain.MovieFilter) ([]domain.Movie, error) {
	owner, ok := parseID(ownerID)
	if !ok {
		return []domain.Movie{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args := buildListQuery(owner, filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := []domain.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

func (r *MovieRepository) Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, domain.ErrMalformedID
	}

	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Director != nil {
		set("director", *patch.Director)
	}
	if patch.Year != nil {
		set("year", *patch.Year)
	}
	if patch.Genre != nil {
		set("genre", *patch.Genre)
	}
	if patch.Rating != nil {
		set("rating", *patch.Rating)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, n)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := fmt.Sprintf(`UPDATE movies SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), movieColumns)

	m, err := scanMovie(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, mapWriteErr("update movie", err)
	}
	return m, nil
}

func (r *MovieRepository) Delete(ctx context.Context, id string) (int64, error) {
	n, ok := parseID(id)
	if !ok {
		return 0, domain.ErrMalformedID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, n)
	if err != nil {
		return 0, fmt.Errorf("delete movie: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete movie: %w", err)
	}
	return affected, nil
}
