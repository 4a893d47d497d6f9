package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the application relies on. The unique
// compound indexes on the edge collections enforce the at-most-one-edge
// invariant at the storage layer, so racing toggles cannot insert
// duplicates.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	spec := map[string][]mongo.IndexModel{
		CollectionUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		CollectionTweets: {
			{Keys: bson.D{{Key: "tweet_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "author.username", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "parent_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		CollectionLikes: {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "tweet_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "tweet_id", Value: 1}}},
		},
		CollectionRetweets: {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "tweet_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "tweet_id", Value: 1}}},
		},
		CollectionBookmarks: {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "tweet_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "tweet_id", Value: 1}}},
		},
		CollectionFollows: {
			{Keys: bson.D{{Key: "follower", Value: 1}, {Key: "following", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "following", Value: 1}}},
		},
		CollectionNotifications: {
			{Keys: bson.D{{Key: "dedupe_key", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "updated_at", Value: -1}}},
			{Keys: bson.D{{Key: "tweet_id", Value: 1}}},
		},
		CollectionHashtags: {
			{Keys: bson.D{{Key: "tag", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "usage_count", Value: -1}}},
		},
		CollectionDrafts: {
			{Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range spec {
		if _, err := d.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
