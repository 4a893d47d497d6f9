package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TweetQuery narrows a timeline fetch. Zero values mean "no restriction";
// Limit of 0 means no limit.
type TweetQuery struct {
	Types      []string
	Author     string
	Authors    []string
	ExcludeIDs []string
	MediaOnly  bool
	Limit      int
	Offset     int
}

// TweetRepository defines the interface for tweet data operations.
type TweetRepository interface {
	Insert(ctx context.Context, tweet *models.Tweet) error
	GetByPublicID(ctx context.Context, tweetID string) (*models.Tweet, error)
	Delete(ctx context.Context, tweetID string) error
	List(ctx context.Context, q TweetQuery) ([]*models.Tweet, error)
	ListByPublicIDs(ctx context.Context, tweetIDs []string) ([]*models.Tweet, error)
	ListReplies(ctx context.Context, parentID string) ([]*models.Tweet, error)
	IncStat(ctx context.Context, tweetID, field string, delta int) error
	SetStats(ctx context.Context, tweetID string, stats models.TweetStats) error
	CountByParentAndType(ctx context.Context, parentID, tweetType string) (int64, error)
	CountByAuthor(ctx context.Context, username string) (int64, error)
}

type tweetRepository struct {
	coll *mongo.Collection
}

// NewTweetRepository creates a new tweet repository.
func NewTweetRepository(coll *mongo.Collection) TweetRepository {
	return &tweetRepository{coll: coll}
}

func (r *tweetRepository) Insert(ctx context.Context, tweet *models.Tweet) error {
	if tweet.CreatedAt.IsZero() {
		tweet.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, tweet)
	return err
}

func (r *tweetRepository) GetByPublicID(ctx context.Context, tweetID string) (*models.Tweet, error) {
	var tweet models.Tweet
	err := r.coll.FindOne(ctx, bson.M{"tweet_id": tweetID}).Decode(&tweet)
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (r *tweetRepository) Delete(ctx context.Context, tweetID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"tweet_id": tweetID})
	return err
}

// List fetches tweets newest first. Ties on created_at break on _id
// descending, which preserves insertion order within a timestamp tick.
func (r *tweetRepository) List(ctx context.Context, q TweetQuery) ([]*models.Tweet, error) {
	filter := bson.M{}
	if len(q.Types) > 0 {
		filter["type"] = bson.M{"$in": q.Types}
	}
	if q.Author != "" {
		filter["author.username"] = q.Author
	} else if len(q.Authors) > 0 {
		filter["author.username"] = bson.M{"$in": q.Authors}
	}
	if len(q.ExcludeIDs) > 0 {
		filter["tweet_id"] = bson.M{"$nin": q.ExcludeIDs}
	}
	if q.MediaOnly {
		filter["media.0"] = bson.M{"$exists": true}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var tweets []*models.Tweet
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (r *tweetRepository) ListByPublicIDs(ctx context.Context, tweetIDs []string) ([]*models.Tweet, error) {
	if len(tweetIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"tweet_id": bson.M{"$in": tweetIDs}})
	if err != nil {
		return nil, err
	}
	var tweets []*models.Tweet
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// ListReplies returns a tweet's replies oldest first (conversation order).
func (r *tweetRepository) ListReplies(ctx context.Context, parentID string) ([]*models.Tweet, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx,
		bson.M{"parent_id": parentID, "type": models.TweetTypeReply}, opts)
	if err != nil {
		return nil, err
	}
	var tweets []*models.Tweet
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (r *tweetRepository) IncStat(ctx context.Context, tweetID, field string, delta int) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"tweet_id": tweetID},
		bson.M{"$inc": bson.M{field: delta}},
	)
	return err
}

func (r *tweetRepository) SetStats(ctx context.Context, tweetID string, stats models.TweetStats) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"tweet_id": tweetID},
		bson.M{"$set": bson.M{"stats": stats}},
	)
	return err
}

func (r *tweetRepository) CountByParentAndType(ctx context.Context, parentID, tweetType string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"parent_id": parentID, "type": tweetType})
}

func (r *tweetRepository) CountByAuthor(ctx context.Context, username string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"author.username": username})
}
