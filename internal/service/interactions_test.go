package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAnonymousViewer(t *testing.T) {
	svc := NewInteractionService(newMemEdges(), newMemEdges(), newMemEdges())

	flags, err := svc.Resolve(context.Background(), "", []string{"t1", "t2"})
	require.NoError(t, err)
	require.Len(t, flags, 2)
	for id, f := range flags {
		assert.False(t, f.IsLiked, id)
		assert.False(t, f.IsRetweeted, id)
		assert.False(t, f.IsBookmarked, id)
	}
}

func TestResolveMixedFlags(t *testing.T) {
	likes, retweets, bookmarks := newMemEdges(), newMemEdges(), newMemEdges()
	svc := NewInteractionService(likes, retweets, bookmarks)

	ctx := context.Background()
	_, err := likes.Insert(ctx, "alice", "t1", time.Now().UTC())
	require.NoError(t, err)
	_, err = bookmarks.Insert(ctx, "alice", "t2", time.Now().UTC())
	require.NoError(t, err)
	_, err = retweets.Insert(ctx, "bob", "t1", time.Now().UTC())
	require.NoError(t, err)

	flags, err := svc.Resolve(ctx, "alice", []string{"t1", "t2"})
	require.NoError(t, err)

	assert.True(t, flags["t1"].IsLiked)
	assert.False(t, flags["t1"].IsRetweeted) // bob's retweet is not alice's
	assert.True(t, flags["t2"].IsBookmarked)
	assert.False(t, flags["t2"].IsLiked)
}
