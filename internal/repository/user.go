// Package repository provides data access layer implementations over MongoDB.
package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations.
// Lookups that miss return mongo.ErrNoDocuments; services translate that
// into NotFound at their boundary.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	IncTweetCount(ctx context.Context, username string, delta int) error
	ApplyFollow(ctx context.Context, follower, following string) error
	ApplyUnfollow(ctx context.Context, follower, following string) error
	SetStats(ctx context.Context, username string, stats models.UserStats) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new user repository.
func NewUserRepository(coll *mongo.Collection) UserRepository {
	return &userRepository{coll: coll}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Followers == nil {
		user.Followers = []string{}
	}
	if user.Following == nil {
		user.Following = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.NewConflictError("Username already taken")
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) IncTweetCount(ctx context.Context, username string, delta int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$inc": bson.M{"stats.tweets": delta}},
	)
	return err
}

// ApplyFollow records follower -> following on both user documents: the
// denormalized relationship lists and the cached counters move together.
func (r *userRepository) ApplyFollow(ctx context.Context, follower, following string) error {
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"username": follower},
		bson.M{
			"$addToSet": bson.M{"following": following},
			"$inc":      bson.M{"stats.following": 1},
		},
	); err != nil {
		return err
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": following},
		bson.M{
			"$addToSet": bson.M{"followers": follower},
			"$inc":      bson.M{"stats.followers": 1},
		},
	)
	return err
}

func (r *userRepository) ApplyUnfollow(ctx context.Context, follower, following string) error {
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"username": follower},
		bson.M{
			"$pull": bson.M{"following": following},
			"$inc":  bson.M{"stats.following": -1},
		},
	); err != nil {
		return err
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": following},
		bson.M{
			"$pull": bson.M{"followers": follower},
			"$inc":  bson.M{"stats.followers": -1},
		},
	)
	return err
}

func (r *userRepository) SetStats(ctx context.Context, username string, stats models.UserStats) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"stats": stats}},
	)
	return err
}
