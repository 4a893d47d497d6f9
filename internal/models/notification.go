package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationTypeLike    = "like"
	NotificationTypeRetweet = "retweet"
	NotificationTypeQuote   = "quote"
	NotificationTypeReply   = "reply"
	NotificationTypeMention = "mention"
	NotificationTypeFollow  = "follow"
)

// Notification records an action directed at a recipient. A repeat of the
// same action by the same actor toward the same recipient within a 24-hour
// bucket refreshes the existing document instead of creating a duplicate;
// DedupeKey carries that identity and has a unique index.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient string             `bson:"recipient" json:"recipient"`
	Actor     AuthorSnapshot     `bson:"actor" json:"actor"`
	Type      string             `bson:"type" json:"type"`
	TweetID   string             `bson:"tweet_id,omitempty" json:"tweetId,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	DedupeKey string             `bson:"dedupe_key" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NotificationDedupeKey builds the idempotency key for a notification:
// (type, recipient, actor, tweet, UTC day bucket). Two actions that collide
// on this key are the same logical notification.
func NotificationDedupeKey(typ, recipient, actor, tweetID string, at time.Time) string {
	bucket := at.UTC().Unix() / int64(24*time.Hour/time.Second)
	return fmt.Sprintf("%s|%s|%s|%s|%d", typ, recipient, actor, tweetID, bucket)
}
