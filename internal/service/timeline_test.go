package service

import (
	"context"
	"fmt"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineSplicesRetweetsWithoutDuplicates(t *testing.T) {
	env := newTestEnv(t, "alice", "bob")

	first := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "first post"})
	second := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "second post"})

	// alice retweets bob's first post after his second went up
	_, err := env.engagementSvc.Toggle(context.Background(), ToggleEngagementInput{
		Kind: EngagementRetweet, Username: "alice", TweetID: first.TweetID,
	})
	require.NoError(t, err)

	items, hasMore, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeAll, Viewer: "alice",
	})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, items, 2)

	// the retweet is the newest event so it leads, attributed to alice
	assert.Equal(t, first.TweetID, items[0].TweetID)
	require.NotNil(t, items[0].RetweetedBy)
	assert.Equal(t, "alice", items[0].RetweetedBy.Username)
	assert.NotNil(t, items[0].RetweetedAt)
	assert.True(t, items[0].IsRetweeted)

	// bob's second post follows as a plain entry, and the first post does
	// not appear a second time
	assert.Equal(t, second.TweetID, items[1].TweetID)
	assert.Nil(t, items[1].RetweetedBy)
}

func TestTimelineFollowingRequiresViewer(t *testing.T) {
	env := newTestEnv(t, "alice")

	_, _, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{Mode: ModeFollowing})
	assertValidationError(t, err)
}

func TestTimelineFollowingScopesToFollowedAuthors(t *testing.T) {
	env := newTestEnv(t, "alice", "bob", "carol")

	env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "from bob"})
	env.mustTweet(t, CreateTweetInput{Username: "carol", Content: "from carol"})
	env.mustTweet(t, CreateTweetInput{Username: "alice", Content: "from alice"})

	_, err := env.followSvc.Toggle(context.Background(), ToggleFollowInput{
		Follower: "alice", Following: "bob",
	})
	require.NoError(t, err)

	items, _, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeFollowing, Viewer: "alice",
	})
	require.NoError(t, err)

	authors := make(map[string]bool)
	for _, item := range items {
		authors[item.Author.Username] = true
	}
	// followed accounts plus the viewer's own posts; carol is out
	assert.True(t, authors["bob"])
	assert.True(t, authors["alice"])
	assert.False(t, authors["carol"])
}

func TestTimelineUserModeDefaultsToOriginals(t *testing.T) {
	env := newTestEnv(t, "alice", "bob")

	original := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "standalone"})
	env.mustTweet(t, CreateTweetInput{
		Username: "bob", Content: "a reply",
		Type: models.TweetTypeReply, TweetRef: original.TweetID,
	})

	items, _, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeUser, Target: "bob",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, original.TweetID, items[0].TweetID)

	// includeReplies widens the set
	items, _, err = env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeUser, Target: "bob", IncludeReplies: true,
	})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTimelineUserModeUnknownTarget(t *testing.T) {
	env := newTestEnv(t, "alice")

	_, _, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeUser, Target: "ghost",
	})
	assertNotFoundError(t, err)
}

func TestTimelineLikedOnlyForcesFlag(t *testing.T) {
	env := newTestEnv(t, "alice", "bob")

	liked := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "worth liking"})
	env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "not liked"})

	_, err := env.engagementSvc.Toggle(context.Background(), ToggleEngagementInput{
		Kind: EngagementLike, Username: "alice", TweetID: liked.TweetID,
	})
	require.NoError(t, err)

	items, _, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeUser, Target: "alice", Viewer: "alice", LikedOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, liked.TweetID, items[0].TweetID)
	assert.True(t, items[0].IsLiked)
}

func TestTimelineAnonymousViewerHasNoFlags(t *testing.T) {
	env := newTestEnv(t, "alice", "bob")

	tweet := env.mustTweet(t, CreateTweetInput{Username: "bob", Content: "popular"})
	_, err := env.engagementSvc.Toggle(context.Background(), ToggleEngagementInput{
		Kind: EngagementLike, Username: "alice", TweetID: tweet.TweetID,
	})
	require.NoError(t, err)

	items, _, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{Mode: ModeAll})
	require.NoError(t, err)
	require.Len(t, items, 1)

	// the like exists but an anonymous viewer sees all flags false
	assert.Equal(t, 1, items[0].Stats.Likes)
	assert.False(t, items[0].IsLiked)
	assert.False(t, items[0].IsRetweeted)
	assert.False(t, items[0].IsBookmarked)
}

func TestTimelinePagination(t *testing.T) {
	env := newTestEnv(t, "alice")

	for i := 0; i < 5; i++ {
		env.mustTweet(t, CreateTweetInput{Username: "alice", Content: "post"})
	}

	page1, hasMore, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeAll, Limit: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.True(t, hasMore)

	page3, hasMore, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
		Mode: ModeAll, Limit: 2, Offset: 4,
	})
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.False(t, hasMore)
}

func TestTimelineDeepPagesShowEachTweetOnce(t *testing.T) {
	env := newTestEnv(t, "alice", "bob")

	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		tw := env.mustTweet(t, CreateTweetInput{
			Username: "bob", Content: fmt.Sprintf("post %d", i),
		})
		ids = append(ids, tw.TweetID)
	}
	// retweets spread across old and recent posts
	for _, id := range []string{ids[0], ids[2], ids[4]} {
		_, err := env.engagementSvc.Toggle(context.Background(), ToggleEngagementInput{
			Kind: EngagementRetweet, Username: "alice", TweetID: id,
		})
		require.NoError(t, err)
	}

	// walking the feed one entry at a time must surface every tweet exactly
	// once, spliced or plain
	seen := make(map[string]int)
	for offset := 0; offset < 20; offset++ {
		page, hasMore, err := env.timelineSvc.Assemble(context.Background(), AssembleInput{
			Mode: ModeAll, Viewer: "alice", Limit: 1, Offset: offset,
		})
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, item := range page {
			seen[item.TweetID]++
		}
		if !hasMore {
			break
		}
	}

	require.Len(t, seen, 6)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}
