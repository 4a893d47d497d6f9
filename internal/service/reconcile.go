package service

import (
	"context"
	"errors"

	"chirp/internal/models"
	"chirp/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReconcileService recomputes cached counters from their sources of truth.
// Counters drift when a crash lands between an edge write and its counter
// update; this routine restores the invariant on demand.
type ReconcileService struct {
	tweets   repository.TweetRepository
	users    repository.UserRepository
	likes    repository.EngagementRepository
	retweets repository.EngagementRepository
	follows  repository.FollowRepository
}

func NewReconcileService(
	tweets repository.TweetRepository,
	users repository.UserRepository,
	likes, retweets repository.EngagementRepository,
	follows repository.FollowRepository,
) *ReconcileService {
	return &ReconcileService{
		tweets:   tweets,
		users:    users,
		likes:    likes,
		retweets: retweets,
		follows:  follows,
	}
}

// ReconcileTweet recounts the tweet's stats from the edge and tweet
// collections and overwrites the cached block. Returns the corrected stats.
func (s *ReconcileService) ReconcileTweet(ctx context.Context, tweetID string) (*models.TweetStats, error) {
	if tweetID == "" {
		return nil, models.NewValidationError("tweetId is required")
	}
	tweet, err := s.tweets.GetByPublicID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("Tweet", tweetID)
		}
		return nil, err
	}

	likes, err := s.likes.CountByTweet(ctx, tweet.TweetID)
	if err != nil {
		return nil, err
	}
	// The retweet counter has two sources: toggle edges and retweet-type
	// child posts, which increment the parent without writing an edge.
	retweetEdges, err := s.retweets.CountByTweet(ctx, tweet.TweetID)
	if err != nil {
		return nil, err
	}
	retweetPosts, err := s.tweets.CountByParentAndType(ctx, tweet.TweetID, models.TweetTypeRetweet)
	if err != nil {
		return nil, err
	}
	replies, err := s.tweets.CountByParentAndType(ctx, tweet.TweetID, models.TweetTypeReply)
	if err != nil {
		return nil, err
	}
	quotes, err := s.tweets.CountByParentAndType(ctx, tweet.TweetID, models.TweetTypeQuote)
	if err != nil {
		return nil, err
	}

	stats := models.TweetStats{
		Replies:  int(replies),
		Retweets: int(retweetEdges + retweetPosts),
		Quotes:   int(quotes),
		Likes:    int(likes),
	}
	if err := s.tweets.SetStats(ctx, tweet.TweetID, stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReconcileUser recounts the user's follower/following/tweet counters from
// the follow edges and the tweets collection.
func (s *ReconcileService) ReconcileUser(ctx context.Context, username string) (*models.UserStats, error) {
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, err
	}

	followers, err := s.follows.CountFollowers(ctx, username)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, username)
	if err != nil {
		return nil, err
	}
	tweets, err := s.tweets.CountByAuthor(ctx, username)
	if err != nil {
		return nil, err
	}

	stats := models.UserStats{
		Followers: int(followers),
		Following: int(following),
		Tweets:    int(tweets),
	}
	if err := s.users.SetStats(ctx, username, stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
