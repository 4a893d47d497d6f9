package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HashtagRepository defines the interface for hashtag usage tracking.
type HashtagRepository interface {
	// UpsertUsage bumps usage_count for each tag, creating rows as needed.
	UpsertUsage(ctx context.Context, tags []string, at time.Time) error
	// Trending returns the most used tags, highest usage first.
	Trending(ctx context.Context, limit int) ([]*models.Hashtag, error)
	// Search returns tags matching the given prefix, highest usage first.
	Search(ctx context.Context, prefix string, limit int) ([]*models.Hashtag, error)
}

type hashtagRepository struct {
	coll *mongo.Collection
}

// NewHashtagRepository creates a new hashtag repository.
func NewHashtagRepository(coll *mongo.Collection) HashtagRepository {
	return &hashtagRepository{coll: coll}
}

func (r *hashtagRepository) UpsertUsage(ctx context.Context, tags []string, at time.Time) error {
	if len(tags) == 0 {
		return nil
	}
	upsert := options.Update().SetUpsert(true)
	for _, tag := range tags {
		_, err := r.coll.UpdateOne(ctx,
			bson.M{"tag": tag},
			bson.M{
				"$inc": bson.M{"usage_count": 1},
				"$set": bson.M{"last_used_at": at},
			},
			upsert,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *hashtagRepository) Trending(ctx context.Context, limit int) ([]*models.Hashtag, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *hashtagRepository) Search(ctx context.Context, prefix string, limit int) ([]*models.Hashtag, error) {
	filter := bson.M{"tag": bson.M{"$regex": "^" + escapeRegex(prefix)}}
	return r.find(ctx, filter, limit)
}

func (r *hashtagRepository) find(ctx context.Context, filter bson.M, limit int) ([]*models.Hashtag, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "usage_count", Value: -1}, {Key: "tag", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var tags []*models.Hashtag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

var regexSpecials = map[rune]bool{
	'.': true, '*': true, '+': true, '?': true, '(': true, ')': true,
	'[': true, ']': true, '{': true, '}': true, '^': true, '$': true,
	'\\': true, '|': true,
}

func escapeRegex(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if regexSpecials[r] {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
