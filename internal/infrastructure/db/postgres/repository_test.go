package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func intPtr(v int) *int { return &v }

var movieCols = []string{"id", "title", "director", "year", "genre", "rating", "user_id", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password,\s*created_at,\s*updated_at\).*RETURNING\s+id$`).
		WithArgs("Ann", "ann@example.com", "hash", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	u, err := repo.Create(context.Background(), &domain.User{
		Name: "Ann", Email: "ann@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "7", u.ID)
	assert.Empty(t, u.PasswordHash)
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_unique"})

	_, err := repo.Create(context.Background(), &domain.User{Email: "ann@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "email", "password", "created_at", "updated_at"}).
			AddRow(int64(7), "Ann", "ann@example.com", "hash", now, now)
	}
	q := `(?s)^SELECT\s+id,\s*name,\s*email,\s*password,.*FROM\s+users\s+WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)$`
	mock.ExpectQuery(q).WithArgs("ann@example.com").WillReturnRows(rows())
	mock.ExpectQuery(q).WithArgs("ann@example.com").WillReturnRows(rows())
	mock.ExpectQuery(q).WithArgs("bob@example.com").WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByEmail(context.Background(), "ann@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "7", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)

	u, err = repo.FindByEmail(context.Background(), "ann@example.com", false)
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)

	_, err = repo.FindByEmail(context.Background(), "bob@example.com", false)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMovieRepository_ValidID(t *testing.T) {
	repo := NewMovieRepository(nil)

	for _, id := range []string{"1", "42", "9000000000"} {
		assert.True(t, repo.ValidID(id), id)
	}
	for _, id := range []string{"", "0", "-1", "1.5", "abc", "12a", " 1", "+3", "99999999999999999999"} {
		assert.False(t, repo.ValidID(id), id)
	}
}

func TestMovieRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+movies\s*\(title,\s*director,\s*year,\s*genre,\s*rating,\s*user_id\).*RETURNING\s+id,`).
		WithArgs("Inception", "Nolan", 2010, "", 9, int64(3)).
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(int64(1), "Inception", "Nolan", int64(2010), "", int64(9), int64(3), now, now))

	m, err := repo.Create(context.Background(), domain.MovieFields{
		Title: "Inception", Director: "Nolan", Year: intPtr(2010), Rating: intPtr(9),
	}, "3")
	require.NoError(t, err)
	assert.Equal(t, "1", m.ID)
	assert.Equal(t, "3", m.OwnerID)
	assert.Equal(t, 2010, *m.Year)
	assert.Equal(t, 9, *m.Rating)
}

func TestMovieRepository_Create_CheckViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)

	mock.ExpectQuery(`INSERT INTO movies`).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "movies_rating_check"})

	_, err := repo.Create(context.Background(), domain.MovieFields{Title: "x", Rating: intPtr(11)}, "3")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMovieRepository_Create_OutOfRange(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)

	mock.ExpectQuery(`INSERT INTO movies`).
		WillReturnError(&pgconn.PgError{Code: "22003", Message: "integer out of range"})

	_, err := repo.Create(context.Background(), domain.MovieFields{Title: "x", Year: intPtr(2010)}, "3")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMovieRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)
	now := time.Now().UTC()

	q := `(?s)^SELECT\s+id,.*FROM\s+movies\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(int64(1), "Heat", "", nil, "", nil, int64(3), now, now))
	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)

	m, err := repo.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Heat", m.Title)
	assert.Nil(t, m.Year)
	assert.Nil(t, m.Rating)

	_, err = repo.FindByID(context.Background(), "2")
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)

	_, err = repo.FindByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrMalformedID)
}

func TestBuildListQuery(t *testing.T) {
	query, args := buildListQuery(3, domain.MovieFilter{
		Title:     "100%_real",
		Genre:     "drama",
		Year:      intPtr(2010),
		MinRating: intPtr(7),
	})

	assert.Contains(t, query, `user_id = $1`)
	assert.Contains(t, query, `title ILIKE $2 ESCAPE '\'`)
	assert.Contains(t, query, `genre ILIKE $3 ESCAPE '\'`)
	assert.Contains(t, query, `year = $4`)
	assert.Contains(t, query, `rating >= $5`)
	assert.NotContains(t, query, "director ILIKE")
	assert.Equal(t, []any{int64(3), `%100\%\_real%`, "%drama%", 2010, 7}, args)
}

func TestMovieRepository_FindMany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)FROM\s+movies\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+rating\s*>=\s*\$2\s+ORDER BY`).
		WithArgs(int64(3), 8).
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow(int64(2), "Heat", "", nil, "", int64(8), int64(3), now, now).
			AddRow(int64(1), "Inception", "", nil, "", int64(9), int64(3), now, now))

	movies, err := repo.FindMany(context.Background(), "3", domain.MovieFilter{MinRating: intPtr(8)})
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Heat", movies[0].Title)
}

func TestMovieRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)
	now := time.Now().UTC()

	q := `(?s)^UPDATE\s+movies\s+SET\s+rating\s*=\s*\$1,\s*updated_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s+RETURNING`
	mock.ExpectQuery(q).WithArgs(10, sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows(movieCols).AddRow(int64(1), "Inception", "", nil, "", int64(10), int64(3), now, now))
	mock.ExpectQuery(q).WithArgs(10, sqlmock.AnyArg(), int64(2)).WillReturnError(sql.ErrNoRows)

	m, err := repo.Update(context.Background(), "1", domain.MoviePatch{Rating: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, 10, *m.Rating)

	_, err = repo.Update(context.Background(), "2", domain.MoviePatch{Rating: intPtr(10)})
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)
}

func TestMovieRepository_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMovieRepository(db)

	mock.ExpectExec(`^DELETE FROM movies WHERE id = \$1$`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM movies WHERE id = \$1$`).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE FROM movies`).WithArgs(int64(3)).WillReturnError(errors.New("conn reset"))

	n, err := repo.Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.Delete(context.Background(), "2")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	_, err = repo.Delete(context.Background(), "3")
	assert.Error(t, err)
}

func TestMigrate_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, ".", gotDir)

	gooseUp = func(context.Context, *sql.DB, string) error { return errors.New("boom") }
	assert.Error(t, Migrate(context.Background(), nil))
}
