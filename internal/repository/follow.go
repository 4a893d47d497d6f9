package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowRepository defines the interface for follow edge operations.
type FollowRepository interface {
	Exists(ctx context.Context, follower, following string) (bool, error)
	// Insert adds the follow edge. Returns false without error when the edge
	// already existed.
	Insert(ctx context.Context, follower, following string, at time.Time) (bool, error)
	// Delete removes the follow edge. Returns false when there was nothing to
	// delete.
	Delete(ctx context.Context, follower, following string) (bool, error)
	// ListFollowing returns the usernames the given user follows.
	ListFollowing(ctx context.Context, follower string) ([]string, error)
	CountFollowers(ctx context.Context, username string) (int64, error)
	CountFollowing(ctx context.Context, username string) (int64, error)
}

type followRepository struct {
	coll *mongo.Collection
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(coll *mongo.Collection) FollowRepository {
	return &followRepository{coll: coll}
}

func (r *followRepository) Exists(ctx context.Context, follower, following string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepository) Insert(ctx context.Context, follower, following string, at time.Time) (bool, error) {
	edge := models.Follow{Follower: follower, Following: following, CreatedAt: at}
	if _, err := r.coll.InsertOne(ctx, edge); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *followRepository) Delete(ctx context.Context, follower, following string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, follower string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"following": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"follower": follower}, opts)
	if err != nil {
		return nil, err
	}
	var edges []*models.Follow
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	following := make([]string, 0, len(edges))
	for _, e := range edges {
		following = append(following, e.Following)
	}
	return following, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, username string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"following": username})
}

func (r *followRepository) CountFollowing(ctx context.Context, username string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"follower": username})
}
