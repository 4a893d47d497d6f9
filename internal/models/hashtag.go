package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hashtag tracks usage of a tag across tweets. Tags are stored lowercased
// and unique; every tweet creation containing hashtags upserts these rows.
type Hashtag struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Tag        string             `bson:"tag" json:"tag"`
	UsageCount int                `bson:"usage_count" json:"usageCount"`
	LastUsedAt time.Time          `bson:"last_used_at" json:"lastUsedAt"`
}

// Draft is an unposted tweet body saved per user.
type Draft struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Content   string             `bson:"content" json:"content"`
	Media     []string           `bson:"media,omitempty" json:"media,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
