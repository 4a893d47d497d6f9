// Package models contains data structures for the application's domain documents.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStats is the cached counter block on a user document. Counters are
// maintained by increment/decrement and can be rebuilt from the follow and
// tweet collections by the reconciliation service.
type UserStats struct {
	Followers int `bson:"followers" json:"followers"`
	Following int `bson:"following" json:"following"`
	Tweets    int `bson:"tweets" json:"tweets"`
}

// User represents an account. The followers/following username lists are
// denormalized alongside the follow edge collection so profile pages render
// without a join.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username    string             `bson:"username" json:"username"`
	DisplayName string             `bson:"display_name" json:"displayName"`
	Avatar      string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Banner      string             `bson:"banner,omitempty" json:"banner,omitempty"`
	Bio         string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Followers   []string           `bson:"followers" json:"followers"`
	Following   []string           `bson:"following" json:"following"`
	Stats       UserStats          `bson:"stats" json:"stats"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

// Snapshot returns the denormalized author summary copied onto tweets and
// notifications at creation time.
func (u *User) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
	}
}
