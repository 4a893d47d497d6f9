package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tweet variant tags.
const (
	TweetTypeOriginal = "original"
	TweetTypeReply    = "reply"
	TweetTypeRetweet  = "retweet"
	TweetTypeQuote    = "quote"
)

// AuthorSnapshot is the author summary denormalized onto tweets and
// notifications at creation time. It is not live-joined; renaming a user
// does not rewrite historical documents.
type AuthorSnapshot struct {
	Username    string `bson:"username" json:"username"`
	DisplayName string `bson:"display_name" json:"displayName"`
	Avatar      string `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// TweetStats is the cached counter block on a tweet document.
// Invariant: each counter equals the number of corresponding edge rows (or
// child tweets) referencing this tweet; the reconciliation service recomputes
// them from source of truth on demand.
type TweetStats struct {
	Replies  int `bson:"replies" json:"replies"`
	Retweets int `bson:"retweets" json:"retweets"`
	Quotes   int `bson:"quotes" json:"quotes"`
	Likes    int `bson:"likes" json:"likes"`
}

// Tweet represents a post. TweetID is the short public identifier exposed to
// clients; it is derived deterministically from the storage ID by a keyed
// hash and is distinct from it.
type Tweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TweetID   string             `bson:"tweet_id" json:"tweetId"`
	Type      string             `bson:"type" json:"type"`
	ParentID  string             `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	Content   string             `bson:"content" json:"content"`
	Media     []string           `bson:"media,omitempty" json:"media,omitempty"`
	Author    AuthorSnapshot     `bson:"author" json:"author"`
	Hashtags  []string           `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	Mentions  []string           `bson:"mentions,omitempty" json:"mentions,omitempty"`
	Stats     TweetStats         `bson:"stats" json:"stats"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// ValidTweetType reports whether t is one of the known variant tags.
func ValidTweetType(t string) bool {
	switch t {
	case TweetTypeOriginal, TweetTypeReply, TweetTypeRetweet, TweetTypeQuote:
		return true
	}
	return false
}

// ParentStatField maps a child tweet type to the parent counter it maintains.
// Returns "" for originals.
func ParentStatField(tweetType string) string {
	switch tweetType {
	case TweetTypeReply:
		return "stats.replies"
	case TweetTypeRetweet:
		return "stats.retweets"
	case TweetTypeQuote:
		return "stats.quotes"
	}
	return ""
}

// InteractionFlags are the per-viewer booleans resolved by the interaction
// aggregator for every tweet returned to a client.
type InteractionFlags struct {
	IsLiked      bool `json:"isLiked"`
	IsRetweeted  bool `json:"isRetweeted"`
	IsBookmarked bool `json:"isBookmarked"`
}

// FeedItem is a tweet as it appears in an assembled timeline: the document
// itself, the viewer's interaction flags, and, for entries spliced in from a
// retweet edge, the retweeting account and edge timestamp.
type FeedItem struct {
	*Tweet
	InteractionFlags
	RetweetedBy *AuthorSnapshot `json:"retweetedBy,omitempty"`
	RetweetedAt *time.Time      `json:"retweetedAt,omitempty"`
}

// SortTime is the timestamp the timeline assembler orders by: the retweet
// edge time for spliced entries, the tweet's own creation time otherwise.
func (f *FeedItem) SortTime() time.Time {
	if f.RetweetedAt != nil {
		return *f.RetweetedAt
	}
	return f.CreatedAt
}
