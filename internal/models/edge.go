package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Edge is a join row representing a directed engagement (like, retweet or
// bookmark) from an actor to a tweet. A unique compound index on
// (username, tweet_id) per edge collection enforces the at-most-one
// invariant even under racing toggles.
type Edge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username  string             `bson:"username" json:"username"`
	TweetID   string             `bson:"tweet_id" json:"tweetId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Follow is a directed relationship between two accounts. Toggling updates
// counters and denormalized lists on both user documents.
type Follow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Follower  string             `bson:"follower" json:"follower"`
	Following string             `bson:"following" json:"following"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
