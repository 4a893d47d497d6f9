package service

import (
	"context"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestReconcileTweetRepairsDriftedCounters(t *testing.T) {
	env := newTestEnv(t, "alice", "bob", "carol")
	tweet := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "drifting"})

	for _, actor := range []string{"alice", "carol"} {
		_, err := env.engagementSvc.Toggle(context.Background(), ToggleEngagementInput{
			Kind: EngagementLike, Username: actor, TweetID: tweet.TweetID,
		})
		require.NoError(t, err)
	}
	env.mustTweet(t, CreateTweetInput{
		Username: "alice", Content: "re",
		Type: models.TweetTypeReply, TweetRef: tweet.TweetID,
	})

	// simulate counter drift from a crashed partial write
	require.NoError(t, env.tweets.SetStats(context.Background(), tweet.TweetID, models.TweetStats{Likes: 99}))

	stats, err := env.reconcileSvc.ReconcileTweet(context.Background(), tweet.TweetID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Likes)
	assert.Equal(t, 1, stats.Replies)
	assert.Equal(t, 0, stats.Retweets)

	stored, err := env.tweets.GetByPublicID(context.Background(), tweet.TweetID)
	require.NoError(t, err)
	assert.Equal(t, *stats, stored.Stats)
}

func TestReconcileTweetCountsRetweetPostsAndEdges(t *testing.T) {
	env := newTestEnv(t, "alice", "bob", "carol")
	tweet := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "worth sharing"})

	// one retweet via the toggle edge, one via a retweet-type child post
	_, err := env.engagementSvc.Toggle(context.Background(), ToggleEngagementInput{
		Kind: EngagementRetweet, Username: "alice", TweetID: tweet.TweetID,
	})
	require.NoError(t, err)
	child := env.mustTweet(t, CreateTweetInput{
		Username: "carol", Content: "sharing this",
		Type: models.TweetTypeRetweet, TweetRef: tweet.TweetID,
	})

	stats, err := env.reconcileSvc.ReconcileTweet(context.Background(), tweet.TweetID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Retweets)

	// the recounted total survives deleting the child post without going
	// negative
	require.NoError(t, env.tweetSvc.Delete(context.Background(), DeleteTweetInput{
		Username: "carol", TweetID: child.TweetID,
	}))
	parent, err := env.tweets.GetByPublicID(context.Background(), tweet.TweetID)
	require.NoError(t, err)
	assert.Equal(t, 1, parent.Stats.Retweets)
}

func TestReconcileUserRepairsDriftedCounters(t *testing.T) {
	env := newTestEnv(t, "alice", "bob", "carol")

	env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "one"})
	env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "two"})
	for _, follower := range []string{"alice", "carol"} {
		_, err := env.followSvc.Toggle(context.Background(), ToggleFollowInput{
			Follower: follower, Following: "bob",
		})
		require.NoError(t, err)
	}

	require.NoError(t, env.users.SetStats(context.Background(), "bob", models.UserStats{Tweets: 42}))

	stats, err := env.reconcileSvc.ReconcileUser(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Followers)
	assert.Equal(t, 0, stats.Following)
	assert.Equal(t, 2, stats.Tweets)

	bob, err := env.users.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, *stats, bob.Stats)
}

func TestReconcileUnknownSubjects(t *testing.T) {
	env := newTestEnv(t, "alice")

	_, err := env.reconcileSvc.ReconcileTweet(context.Background(), "missing")
	assertNotFoundError(t, err)

	_, err = env.reconcileSvc.ReconcileUser(context.Background(), "ghost")
	assertNotFoundError(t, err)
}
