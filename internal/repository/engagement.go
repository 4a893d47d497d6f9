package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EngagementRepository is the data access interface shared by the likes,
// retweets and bookmarks collections: all three store identical edge rows
// keyed by (actor, tweet).
type EngagementRepository interface {
	Exists(ctx context.Context, username, tweetID string) (bool, error)
	// FilterEngaged returns the subset of tweetIDs the actor has an edge for,
	// as a set. One query regardless of how many IDs are probed.
	FilterEngaged(ctx context.Context, username string, tweetIDs []string) (map[string]bool, error)
	// Insert adds the edge. Returns false without error when the edge already
	// existed (a concurrent toggle won the race on the unique index).
	Insert(ctx context.Context, username, tweetID string, at time.Time) (bool, error)
	// Delete removes the edge. Returns false when there was nothing to delete.
	Delete(ctx context.Context, username, tweetID string) (bool, error)
	DeleteByTweet(ctx context.Context, tweetID string) error
	// ListByActors returns edges belonging to any of the given actors, newest
	// first. Limit 0 means all.
	ListByActors(ctx context.Context, usernames []string, limit, offset int) ([]*models.Edge, error)
	CountByTweet(ctx context.Context, tweetID string) (int64, error)
}

type engagementRepository struct {
	coll *mongo.Collection
}

// NewEngagementRepository creates an engagement repository over the given
// edge collection (likes, retweets or bookmarks).
func NewEngagementRepository(coll *mongo.Collection) EngagementRepository {
	return &engagementRepository{coll: coll}
}

func (r *engagementRepository) Exists(ctx context.Context, username, tweetID string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"username": username, "tweet_id": tweetID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *engagementRepository) FilterEngaged(ctx context.Context, username string, tweetIDs []string) (map[string]bool, error) {
	engaged := make(map[string]bool, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return engaged, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{
		"username": username,
		"tweet_id": bson.M{"$in": tweetIDs},
	})
	if err != nil {
		return nil, err
	}
	var edges []*models.Edge
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	for _, e := range edges {
		engaged[e.TweetID] = true
	}
	return engaged, nil
}

func (r *engagementRepository) Insert(ctx context.Context, username, tweetID string, at time.Time) (bool, error) {
	edge := models.Edge{Username: username, TweetID: tweetID, CreatedAt: at}
	if _, err := r.coll.InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *engagementRepository) Delete(ctx context.Context, username, tweetID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"username": username, "tweet_id": tweetID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *engagementRepository) DeleteByTweet(ctx context.Context, tweetID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"tweet_id": tweetID})
	return err
}

func (r *engagementRepository) ListByActors(ctx context.Context, usernames []string, limit, offset int) ([]*models.Edge, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"username": bson.M{"$in": usernames}}, opts)
	if err != nil {
		return nil, err
	}
	var edges []*models.Edge
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

func (r *engagementRepository) CountByTweet(ctx context.Context, tweetID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"tweet_id": tweetID})
}
