package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second

	codeNamespaceExists  = 48
	codeValidationFailed = 121
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Migrate prepares both collections: the movie schema validator and the
// indexes of each repository.
func Migrate(ctx context.Context, users *UserRepository, movies *MovieRepository) error {
	if err := movies.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return movies.EnsureIndexes(ctx)
}

// createOrModify installs a $jsonSchema validator on name, creating the
// collection when it does not exist yet.
func createOrModify(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	err := db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(bson.M{"$jsonSchema": schema}))
	if err == nil {
		return nil
	}

	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Code != codeNamespaceExists {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	err = db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: bson.M{"$jsonSchema": schema}},
	}).Err()
	if err != nil {
		return fmt.Errorf("collMod %s: %w", name, err)
	}
	return nil
}

func isValidationFailure(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == codeValidationFailed {
				return true
			}
		}
	}
	var ce mongo.CommandError
	return errors.As(err, &ce) && ce.Code == codeValidationFailed
}
