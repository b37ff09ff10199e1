package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

const moviesCollection = "movies"

type MovieRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{db: db, coll: db.Collection(moviesCollection)}
}

type movieDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Director  string             `bson:"director,omitempty"`
	Year      *int               `bson:"year,omitempty"`
	Genre     string             `bson:"genre,omitempty"`
	Rating    *int               `bson:"rating,omitempty"`
	User      primitive.ObjectID `bson:"user"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d movieDoc) toDomain() domain.Movie {
	return domain.Movie{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Director:  d.Director,
		Year:      d.Year,
		Genre:     d.Genre,
		Rating:    d.Rating,
		OwnerID:   d.User.Hex(),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// ValidID reports whether id is a 24-character hex ObjectID.
func (r *MovieRepository) ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (r *MovieRepository) Create(ctx context.Context, fields domain.MovieFields, ownerID string) (*domain.Movie, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner id %q: %w", ownerID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := movieDoc{
		ID:        primitive.NewObjectID(),
		Title:     fields.Title,
		Director:  fields.Director,
		Year:      fields.Year,
		Genre:     fields.Genre,
		Rating:    fields.Rating,
		User:      owner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if isValidationFailure(err) {
			return nil, fmt.Errorf("insert movie: %w", domain.ErrValidation)
		}
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	m := doc.toDomain()
	return &m, nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMalformedID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc movieDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}

	m := doc.toDomain()
	return &m, nil
}

// FindMany returns the owner's movies matching filter, newest first.
func (r *MovieRepository) FindMany(ctx context.Context, ownerID string, filter domain.MovieFilter) ([]domain.Movie, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []domain.Movie{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, buildFilter(owner, filter), options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	defer cur.Close(ctx)

	var docs []movieDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	movies := make([]domain.Movie, 0, len(docs))
	for _, d := range docs {
		movies = append(movies, d.toDomain())
	}
	return movies, nil
}

// buildFilter always scopes by owner. Text filters are escaped before they
// become case-insensitive regexes.
func buildFilter(owner primitive.ObjectID, f domain.MovieFilter) bson.M {
	q := bson.M{"user": owner}

	for field, value := range map[string]string{"title": f.Title, "director": f.Director, "genre": f.Genre} {
		if value != "" {
			q[field] = primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
		}
	}
	if f.Year != nil {
		q["year"] = *f.Year
	}
	if f.MinRating != nil {
		q["rating"] = bson.M{"$gte": *f.MinRating}
	}
	return q
}

func (r *MovieRepository) Update(ctx context.Context, id string, patch domain.MoviePatch) (*domain.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMalformedID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Director != nil {
		set["director"] = *patch.Director
	}
	if patch.Year != nil {
		set["year"] = *patch.Year
	}
	if patch.Genre != nil {
		set["genre"] = *patch.Genre
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc movieDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		if isValidationFailure(err) {
			return nil, fmt.Errorf("update movie: %w", domain.ErrValidation)
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}

	m := doc.toDomain()
	return &m, nil
}

// Delete reports how many documents were removed (0 or 1).
func (r *MovieRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, domain.ErrMalformedID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("delete movie: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureSchema installs the validator that keeps title present and year and
// rating within range even for writes that bypass the service.
func (r *MovieRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return createOrModify(ctx, r.db, moviesCollection, bson.M{
		"bsonType": "object",
		"required": bson.A{"title", "user"},
		"properties": bson.M{
			"title":  bson.M{"bsonType": "string", "minLength": 1},
			"rating": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": domain.MinRating, "maximum": domain.MaxRating},
			"year":   bson.M{"bsonType": bson.A{"int", "long"}, "minimum": domain.MinYear, "maximum": domain.MaxYear},
			"user":   bson.M{"bsonType": "objectId"},
		},
	})
}

// EnsureIndexes creates the per-owner lookup index.
func (r *MovieRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "title", Value: 1}},
		Options: options.Index().SetName("movies_user_title"),
	})
	if err != nil {
		return fmt.Errorf("create movies indexes: %w", err)
	}
	return nil
}
