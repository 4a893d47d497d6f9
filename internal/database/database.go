// Package database manages the MongoDB connection lifecycle and exposes
// typed collection handles to the repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"chirp/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names as persisted.
const (
	CollectionUsers         = "users"
	CollectionTweets        = "tweets"
	CollectionLikes         = "likes"
	CollectionRetweets      = "retweets"
	CollectionBookmarks     = "bookmarks"
	CollectionFollows       = "follows"
	CollectionNotifications = "notifications"
	CollectionHashtags      = "hashtags"
	CollectionDrafts        = "drafts"
)

const connectTimeout = 10 * time.Second

// DB wraps the Mongo client and database handle. It owns the connection
// lifecycle: repositories receive collection handles from it and never dial
// or close on their own.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes the MongoDB connection, verifies it with a ping, and
// ensures the schema indexes exist.
func Connect(cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	d := &DB{client: client, db: client.Database(cfg.MongoDB)}
	if err := d.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return d, nil
}

// Collection returns a handle for the named collection.
func (d *DB) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Ping verifies the connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// WithTransaction runs fn inside a Mongo session transaction. The context
// passed to fn must be used for every store operation inside the
// transaction. Requires a replica set deployment.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := d.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := fn(sessCtx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
