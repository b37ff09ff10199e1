package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

func intPtr(v int) *int { return &v }

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create returns user without password", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		u, err := repo.Create(context.Background(), &domain.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "hash"})
		require.NoError(mt, err)
		assert.Len(mt, u.ID, 24)
		assert.Empty(mt, u.PasswordHash)
		assert.Equal(mt, "ann@example.com", u.Email)
	})

	mt.Run("duplicate key maps to ErrUserExists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Email: "ann@example.com"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Ann"},
			{Key: "email", Value: "ann@example.com"},
			{Key: "password", Value: "hash"},
		}))
		repo := NewUserRepository(mt.DB)

		u, err := repo.FindByEmail(context.Background(), "ann@example.com", true)
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "hash", u.PasswordHash)
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		_, err := repo.FindByEmail(context.Background(), "nobody@example.com", false)
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}

func movieBSON(id, owner primitive.ObjectID, title string, rating int) bson.D {
	now := time.Now().UTC()
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "rating", Value: rating},
		{Key: "user", Value: owner},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestMovieRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	owner := primitive.NewObjectID()

	mt.Run("create sets owner", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMovieRepository(mt.DB)

		m, err := repo.Create(context.Background(), domain.MovieFields{Title: "Inception", Rating: intPtr(9)}, owner.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, owner.Hex(), m.OwnerID)
		assert.True(mt, repo.ValidID(m.ID))
	})

	mt.Run("schema rejection maps to ErrValidation", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 121, Message: "Document failed validation",
		}))
		repo := NewMovieRepository(mt.DB)

		_, err := repo.Create(context.Background(), domain.MovieFields{Title: "x", Rating: intPtr(42)}, owner.Hex())
		assert.ErrorIs(mt, err, domain.ErrValidation)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.movies", mtest.FirstBatch, movieBSON(id, owner, "Inception", 9)))
		repo := NewMovieRepository(mt.DB)

		m, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, "Inception", m.Title)
		assert.Equal(mt, 9, *m.Rating)
		assert.Equal(mt, owner.Hex(), m.OwnerID)
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.movies", mtest.FirstBatch))
		repo := NewMovieRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domain.ErrMovieNotFound)
	})

	mt.Run("find many", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.movies", mtest.FirstBatch,
			movieBSON(primitive.NewObjectID(), owner, "Inception", 9),
			movieBSON(primitive.NewObjectID(), owner, "Heat", 8),
		))
		repo := NewMovieRepository(mt.DB)

		movies, err := repo.FindMany(context.Background(), owner.Hex(), domain.MovieFilter{MinRating: intPtr(8)})
		require.NoError(mt, err)
		assert.Len(mt, movies, 2)
	})

	mt.Run("update returns the new document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: movieBSON(id, owner, "Inception", 10)}))
		repo := NewMovieRepository(mt.DB)

		m, err := repo.Update(context.Background(), id.Hex(), domain.MoviePatch{Rating: intPtr(10)})
		require.NoError(mt, err)
		assert.Equal(mt, 10, *m.Rating)
	})

	mt.Run("update on vanished document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))
		repo := NewMovieRepository(mt.DB)

		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), domain.MoviePatch{Rating: intPtr(10)})
		assert.ErrorIs(mt, err, domain.ErrMovieNotFound)
	})

	mt.Run("delete reports count", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		repo := NewMovieRepository(mt.DB)

		n, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.EqualValues(mt, 1, n)

		n, err = repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.EqualValues(mt, 0, n)
	})
}

func TestMovieRepository_ValidID(t *testing.T) {
	repo := &MovieRepository{}
	assert.True(t, repo.ValidID(primitive.NewObjectID().Hex()))
	for _, id := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz", "507f1f77bcf86cd79943901"} {
		assert.False(t, repo.ValidID(id), id)
	}
}

func TestBuildFilter(t *testing.T) {
	owner := primitive.NewObjectID()

	q := buildFilter(owner, domain.MovieFilter{
		Title:     "star (1977)",
		Year:      intPtr(1977),
		MinRating: intPtr(7),
	})

	assert.Equal(t, owner, q["user"])
	assert.Equal(t, primitive.Regex{Pattern: `star \(1977\)`, Options: "i"}, q["title"])
	assert.Equal(t, 1977, q["year"])
	assert.Equal(t, bson.M{"$gte": 7}, q["rating"])
	assert.NotContains(t, q, "director")
	assert.NotContains(t, q, "genre")
}

func TestMigrate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing collection gets collMod", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 48, Name: "NamespaceExists", Message: "collection already exists"}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		err := Migrate(context.Background(), NewUserRepository(mt.DB), NewMovieRepository(mt.DB))
		require.NoError(mt, err)
	})

	mt.Run("other create failures abort", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		err := Migrate(context.Background(), NewUserRepository(mt.DB), NewMovieRepository(mt.DB))
		assert.Error(mt, err)
	})
}
