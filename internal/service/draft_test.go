package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftLifecycle(t *testing.T) {
	svc := NewDraftService(newMemDrafts())

	draft, err := svc.Create(context.Background(), CreateDraftInput{
		Username: "alice", Content: "half a thought",
	})
	require.NoError(t, err)
	require.False(t, draft.ID.IsZero())

	drafts, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	// other users see nothing
	drafts, err = svc.List(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, drafts)

	err = svc.Delete(context.Background(), "alice", draft.ID.Hex())
	require.NoError(t, err)

	drafts, err = svc.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestDraftValidation(t *testing.T) {
	svc := NewDraftService(newMemDrafts())

	_, err := svc.Create(context.Background(), CreateDraftInput{Content: "x"})
	assertValidationError(t, err)

	_, err = svc.Create(context.Background(), CreateDraftInput{Username: "alice"})
	assertValidationError(t, err)

	// media alone is enough
	draft, err := svc.Create(context.Background(), CreateDraftInput{
		Username: "alice", Media: []string{"https://cdn.example.com/a.jpg"},
	})
	require.NoError(t, err)
	assert.Empty(t, draft.Content)

	err = svc.Delete(context.Background(), "alice", "nothex")
	assertValidationError(t, err)

	err = svc.Delete(context.Background(), "alice", "64a000000000000000000000")
	assertNotFoundError(t, err)
}
