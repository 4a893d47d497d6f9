package repository

import (
	"context"
	"time"

	"chirp/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification data
// operations.
type NotificationRepository interface {
	// Upsert writes the notification keyed by its dedupe key. A repeat of the
	// same logical notification bumps updated_at and resets the read flag;
	// created_at is only set on first insert. Returns true when a new
	// document was created.
	Upsert(ctx context.Context, n *models.Notification) (bool, error)
	ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, recipient, id string) error
	MarkAllRead(ctx context.Context, recipient string) error
	DeleteByTweet(ctx context.Context, tweetID string) error
	CountUnread(ctx context.Context, recipient string) (int64, error)
}

type notificationRepository struct {
	coll *mongo.Collection
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(coll *mongo.Collection) NotificationRepository {
	return &notificationRepository{coll: coll}
}

func (r *notificationRepository) Upsert(ctx context.Context, n *models.Notification) (bool, error) {
	now := n.UpdatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"dedupe_key": n.DedupeKey},
		bson.M{
			"$set": bson.M{
				"recipient":  n.Recipient,
				"actor":      n.Actor,
				"type":       n.Type,
				"tweet_id":   n.TweetID,
				"read":       false,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipient string, limit, offset int) ([]*models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"recipient": recipient}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipient, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewValidationError("Invalid notification id")
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipient string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"recipient": recipient, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

func (r *notificationRepository) DeleteByTweet(ctx context.Context, tweetID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"tweet_id": tweetID})
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipient string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"recipient": recipient, "read": false})
}
